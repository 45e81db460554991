package composition

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	validate "gopkg.in/dealancer/validate.v2"
)

var fs afero.Fs = afero.NewOsFs()

// Load reads, parses and validates a composition document from the given
// path. The document arrives fully resolved: asset paths are expected to
// already point at real media.
func Load(path string) (Document, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return Document{}, errors.Wrapf(err, "unable to read composition document %s", path)
	}
	return Parse(content)
}

// Parse unmarshals and validates an in-memory composition document.
func Parse(content []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(content, &doc); err != nil {
		return Document{}, errors.Wrap(err, "parsing composition document error")
	}

	applyDefaults(&doc)

	if err := validate.Validate(&doc); err != nil {
		return Document{}, errors.Wrap(err, "unable to validate composition document")
	}

	if err := doc.RunValidate(); err != nil {
		return Document{}, err
	}

	return doc, nil
}

func applyDefaults(doc *Document) {
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		if n.Kind == KindAudioTrack && n.Volume == 0 {
			n.Volume = 1.0
		}
	}
}
