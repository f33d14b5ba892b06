package classifier

import (
	"bufio"
	"bytes"
	"chat-analyzer/errors"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed stopwords/*.txt
var stopWordFiles embed.FS

// WordList carries the words read from a directory of per-language lists.
type WordList struct {
	Words     []string
	Languages []string
}

// DefaultStopWords loads the embedded English and Hinglish stop-word lists.
func DefaultStopWords() (*WordList, error) {
	return LoadWordLists(stopWordFiles, "stopwords")
}

// LoadWordLists reads every .txt file of dir, one word per line, and returns the
// unique lowercase words. The file name without extension is the language.
func LoadWordLists(fsys fs.FS, dir string) (*WordList, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var languages []string
	uniqueWords := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		// Scanner copes with both \n and \r\n line endings
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if line != "" {
				uniqueWords[line] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(uniqueWords) == 0 {
		return nil, errors.ErrEmptyWords
	}

	words := make([]string, 0, len(uniqueWords))
	for w := range uniqueWords {
		words = append(words, w)
	}
	sort.Strings(words)

	return &WordList{Words: words, Languages: languages}, nil
}
