package source

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// findFiles returns files under dir with extension ext in lexical path order.
func findFiles(dir, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ext) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func readScript(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return SplitStatements(string(data)), nil
}

// SplitStatements splits a SQL script on semicolons that are not inside a
// quoted literal or a "--" comment. Blank statements are dropped.
func SplitStatements(script string) []string {
	var (
		stmts   []string
		cur     strings.Builder
		quote   rune
		comment bool
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	runes := []rune(script)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case comment:
			if r == '\n' {
				comment = false
				cur.WriteRune(r)
			}
			continue
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			comment = true
			continue
		case r == ';':
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return stmts
}
