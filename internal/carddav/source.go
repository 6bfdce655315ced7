package carddav

import (
	"context"
	"os"

	"github.com/emersion/go-vcard"

	"github.com/agentstation/nc2ldap/pkg/errors"
)

// File is a card source backed by a local .vcf export.
type File struct {
	Path string
}

// Cards reads and parses the file on every call.
func (f File) Cards(_ context.Context) ([]vcard.Card, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, errors.WrapResource("open", "vcard file", f.Path, err)
	}
	defer fh.Close()

	cards, err := ParseCards(fh)
	var parseErr *errors.ParseError
	if errors.As(err, &parseErr) {
		parseErr.File = f.Path
	}
	if err != nil {
		return nil, err
	}
	return cards, nil
}
