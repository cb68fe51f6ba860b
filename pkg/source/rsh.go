package source

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// rshFrame mirrors one <frame> element of the Heisig XML. Components are
// referenced by keyword name inside <p><cite> tags, not by character. The
// XML carries no spatial data; layout comes from the IDS tier.
type rshFrame struct {
	Character string   `xml:"character,attr"`
	Keyword   string   `xml:"keyword,attr"`
	Aliases   []string `xml:"primitive>pself"`
	Cites     []string `xml:"p>cite"`
}

// LoadRSH parses a Heisig RSH XML file into primary-tier records. Frames
// missing a character or keyword are skipped and counted; the loader fails
// only when the file is unreadable or not well-formed XML.
func LoadRSH(path string) ([]Record, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open rsh source: %w: %w", ErrMissingSource, err)
	}
	defer f.Close()
	return parseRSH(f)
}

func parseRSH(r io.Reader) ([]Record, int, error) {
	dec := xml.NewDecoder(r)

	var records []Record
	skipped := 0
	frames := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("parse rsh source: %w: %w", ErrMissingSource, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "frame" {
			continue
		}
		frames++

		var fr rshFrame
		if err := dec.DecodeElement(&fr, &start); err != nil {
			// One bad frame must not sink the whole book.
			skipped++
			continue
		}
		if fr.Character == "" || fr.Keyword == "" {
			skipped++
			continue
		}

		var components []string
		for _, c := range fr.Cites {
			if c != "" {
				components = append(components, c)
			}
		}
		var aliases []string
		for _, a := range fr.Aliases {
			if a != "" {
				aliases = append(aliases, a)
			}
		}

		records = append(records, Record{
			Character:  fr.Character,
			Keyword:    fr.Keyword,
			Components: components,
			Aliases:    aliases,
			Tier:       TierPrimary,
		})
	}

	if frames == 0 {
		return nil, skipped, fmt.Errorf("parse rsh source: %w: no frame elements found", ErrMissingSource)
	}
	return records, skipped, nil
}
