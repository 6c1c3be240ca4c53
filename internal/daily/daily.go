package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"time"

	"github.com/robalobadob/overland/apps/go-server/internal/scenario"
)

// ErrNoDailyScenario is returned when the map has no playable country.
var ErrNoDailyScenario = errors.New("daily: no playable countries")

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Index returns a deterministic index in [0, n) for a date and a label using
// HMAC(salt, "YYYY-MM-DD|label") % n.
func Index(date time.Time, salt, label string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date) + "|" + label))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for modulus distribution
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Scenario picks the day's trip: the start among the playable countries, the
// goal among the start's peers. Everyone playing on the same date with the
// same salt gets the same pair.
func Scenario(date time.Time, salt string, idx scenario.Reachability) (scenario.Scenario, error) {
	playable := idx.Playable()
	if len(playable) == 0 {
		return scenario.Scenario{}, ErrNoDailyScenario
	}
	start := playable[Index(date, salt, "start", len(playable))]
	peers := idx.Peers(start)
	if len(peers) == 0 {
		return scenario.Scenario{}, ErrNoDailyScenario
	}
	goal := peers[Index(date, salt, "goal", len(peers))]
	return scenario.Scenario{Start: start, Goal: goal}, nil
}
