package chunk

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/siherrmann/kgraph/model"
)

var headingRe = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
var codeBlockRe = regexp.MustCompile("(?s)```.*?```")

// section is one heading-delimited region of a document
type section struct {
	heading string
	level   int
	body    string
}

// Hierarchical creates a chunker that splits a document into
// heading-delimited sections and chunks each section independently.
// Fenced code blocks are protected from splitting when
// opts.PreserveCodeBlocks is set. Every chunk is prefixed with its section
// heading and tagged with the heading and its level.
func Hierarchical(opts model.ChunkOptions) ChunkFunc {
	return func(ctx context.Context, text string) ([]*model.Chunk, error) {
		// Protect code blocks with placeholders so the sentence splitter
		// cannot cut through them
		var codeBlocks []string
		if opts.PreserveCodeBlocks {
			text = codeBlockRe.ReplaceAllStringFunc(text, func(block string) string {
				placeholder := fmt.Sprintf("__CODE_BLOCK_%d__", len(codeBlocks))
				codeBlocks = append(codeBlocks, block)
				return placeholder
			})
		}

		sections := splitSections(text)

		var chunks []*model.Chunk
		index := 0

		for _, sec := range sections {
			body := normalizeWhitespace(sec.body)
			if body == "" {
				continue
			}

			var parts []string
			if len(body) > opts.ChunkSize {
				// Recurse into the baseline splitter for oversized sections
				sentenceChunks, err := Sentence(withoutAnnotation(opts))(ctx, body)
				if err != nil {
					return nil, err
				}
				for _, sc := range sentenceChunks {
					parts = append(parts, sc.Content)
				}
			} else {
				parts = []string{body}
			}

			for _, part := range parts {
				content := part
				if sec.heading != "" {
					content = sec.heading + "\n" + part
				}

				c := newChunk(restoreCodeBlocks(content, codeBlocks), index, model.ChunkStrategyHierarchical)
				c.SectionHeading = sec.heading
				c.SectionLevel = sec.level
				chunks = append(chunks, c)
				index++
			}
		}

		annotate(chunks, opts)
		return chunks, nil
	}
}

// splitSections parses markdown-style headings into sections. Text before
// the first heading becomes a level-0 section with no heading.
func splitSections(text string) []section {
	matches := headingRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []section{{body: text}}
	}

	var sections []section

	if lead := text[:matches[0][0]]; strings.TrimSpace(lead) != "" {
		sections = append(sections, section{body: lead})
	}

	for i, m := range matches {
		level := m[3] - m[2]
		heading := strings.TrimSpace(text[m[4]:m[5]])

		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := text[m[1]:end]

		sections = append(sections, section{
			heading: heading,
			level:   level,
			body:    body,
		})
	}

	return sections
}

func restoreCodeBlocks(content string, codeBlocks []string) string {
	for i, block := range codeBlocks {
		content = strings.ReplaceAll(content, fmt.Sprintf("__CODE_BLOCK_%d__", i), block)
	}
	return content
}

// withoutAnnotation disables per-chunk extraction for intermediate passes,
// the enclosing strategy annotates the final chunks itself
func withoutAnnotation(opts model.ChunkOptions) model.ChunkOptions {
	opts.ExtractEntities = false
	return opts
}
