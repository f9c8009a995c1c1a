package fixtures

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var ErrManifestInvalid = errors.New("fixtures: manifest invalid")

const manifestSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"address": {"type": "string", "pattern": "^[A-Za-z0-9_-]+$"},
		"password": {"type": "string"},
		"published": {"type": "boolean"}
	},
	"additionalProperties": false
}`

// ManifestIssue is one schema violation found in a web.yaml file.
type ManifestIssue struct {
	Location string
	Message  string
}

// ManifestError lists every violation of a single manifest.
type ManifestError struct {
	Dir    string
	Issues []ManifestIssue
}

func (e *ManifestError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return fmt.Sprintf("fixtures: manifest %s: %s", e.Dir, strings.Join(parts, "; "))
}

func (e *ManifestError) Unwrap() error {
	return ErrManifestInvalid
}

var compiledManifestSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("web.schema.json", strings.NewReader(manifestSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("web.schema.json")
})

// validateManifest checks a decoded web.yaml document. The document is
// round-tripped through JSON so YAML scalars match JSON schema types.
func validateManifest(dir string, doc any) error {
	if doc == nil {
		return nil
	}
	schema, err := compiledManifestSchema()
	if err != nil {
		return fmt.Errorf("fixtures: compile manifest schema: %w", err)
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return &ManifestError{Dir: dir, Issues: []ManifestIssue{{Message: err.Error()}}}
	}
	var instance any
	if err := json.Unmarshal(encoded, &instance); err != nil {
		return &ManifestError{Dir: dir, Issues: []ManifestIssue{{Message: err.Error()}}}
	}

	if err := schema.Validate(instance); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return &ManifestError{Dir: dir, Issues: collectIssues(validationErr)}
		}
		return &ManifestError{Dir: dir, Issues: []ManifestIssue{{Message: err.Error()}}}
	}
	return nil
}

func collectIssues(err *jsonschema.ValidationError) []ManifestIssue {
	var issues []ManifestIssue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ManifestIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
