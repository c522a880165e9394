package curriculum

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/grammar-study.schema.json
var documentSchema []byte

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(documentSchema))
})

// SchemaError lists every structural problem found in a document.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("document does not match schema: %s", strings.Join(e.Problems, "; "))
}

// Validate checks that doc has the grammar-study shape: topics with sentences,
// questions with options, and explanations mapping locales to strings.
func Validate(doc *Document) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}

	data, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validating document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return &SchemaError{Problems: problems}
}
