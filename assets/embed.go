package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed borders.json countries.json images.txt sql/*.sql
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToUpper(s))
	}
	return out, sc.Err()
}

func Borders() ([]byte, error) {
	return FS.ReadFile("borders.json")
}

func Countries() ([]byte, error) {
	return FS.ReadFile("countries.json")
}

// ImageManifest lists country ids that ship with a local photo.
func ImageManifest() ([]string, error) {
	return readLines("images.txt")
}

// Migrations exposes the sql directory with *.sql files at its root.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}
