package utils

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the YAML header written on exported documents
type Frontmatter struct {
	ID         string   `yaml:"id,omitempty"`
	Title      string   `yaml:"title,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
	FolderPath string   `yaml:"folder_path,omitempty"`
}

// ParseFrontmatter splits a markdown file into its YAML frontmatter and body.
// Files without a leading "---" line have no frontmatter; the whole file is body.
//
// Expected format:
//
//	---
//	title: API Guide
//	tags: [backend]
//	---
//	# Markdown content here
func ParseFrontmatter(content []byte) (*Frontmatter, string, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(content, []byte("---\n")) && !bytes.HasPrefix(content, []byte("---\r\n")) {
		return &Frontmatter{}, string(content), nil
	}

	lines := bytes.Split(content, []byte("\n"))

	// Skip the opening "---" line
	closingDelim := 0
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			closingDelim = i
			break
		}
	}
	if closingDelim == 0 {
		return nil, "", errors.New("missing closing frontmatter delimiter '---'")
	}

	var fm Frontmatter
	yamlContent := bytes.Join(lines[1:closingDelim], []byte("\n"))
	if err := yaml.Unmarshal(yamlContent, &fm); err != nil {
		return nil, "", fmt.Errorf("failed to parse YAML frontmatter: %w", err)
	}

	body := string(bytes.Join(lines[closingDelim+1:], []byte("\n")))
	return &fm, body, nil
}

// RenderFrontmatter prefixes body with fm as a YAML frontmatter block
func RenderFrontmatter(fm *Frontmatter, body string) ([]byte, error) {
	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("marshal frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}
