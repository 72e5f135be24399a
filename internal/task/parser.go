package task

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/obsidian-tasks/internal/utils"
)

//go:embed task.schema.json
var embeddedSchema string

const embeddedSchemaURL = "task.schema.json"

var (
	defaultSchemaOnce sync.Once
	defaultSchema     *jsonschema.Schema
	defaultSchemaErr  error
)

// ParseError describes why one note could not become a task.
type ParseError struct {
	Path  string // note path
	Field string // dotted frontmatter field, when known
	Err   error
}

func (e *ParseError) Error() string {
	switch {
	case e.Path != "" && e.Field != "":
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Field, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParserOptions controls how frontmatter is type checked.
type ParserOptions struct {
	// SchemaPath is a JSON Schema file used instead of the embedded one.
	SchemaPath string
}

// Parser turns frontmatter blocks into tasks.
type Parser struct {
	schema     *jsonschema.Schema
	schemaName string
}

// NewParser compiles the task schema. With empty options the embedded schema
// is used.
func NewParser(opts ParserOptions) (*Parser, error) {
	if opts.SchemaPath == "" {
		schema, err := compileEmbeddedSchema()
		if err != nil {
			return nil, err
		}
		return &Parser{schema: schema, schemaName: "embedded"}, nil
	}

	absPath, err := filepath.Abs(opts.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(absPath)
	if err != nil {
		return nil, fmt.Errorf("compile schema file %s: %w", absPath, err)
	}
	return &Parser{schema: schema, schemaName: absPath}, nil
}

// SchemaName returns "embedded" or the path of the schema in use.
func (p *Parser) SchemaName() string {
	return p.schemaName
}

func compileEmbeddedSchema() (*jsonschema.Schema, error) {
	defaultSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(embeddedSchemaURL, strings.NewReader(embeddedSchema)); err != nil {
			defaultSchemaErr = fmt.Errorf("load embedded task schema: %w", err)
			return
		}
		defaultSchema, defaultSchemaErr = compiler.Compile(embeddedSchemaURL)
		if defaultSchemaErr != nil {
			defaultSchemaErr = fmt.Errorf("compile embedded task schema: %w", defaultSchemaErr)
		}
	})
	return defaultSchema, defaultSchemaErr
}

// Parse decodes a frontmatter block read from path. Any failure is returned
// as a *ParseError and no partial task is produced.
func (p *Parser) Parse(block, path string) (*Task, error) {
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("malformed yaml: %w", err)}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	if err := p.validate(raw); err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	if err := checkDates(raw); err != nil {
		err.Path = path
		return nil, err
	}

	var t Task
	if err := yaml.Unmarshal([]byte(block), &t); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	t.normalize()
	t.SourcePath = path
	return &t, nil
}

// validate checks the decoded block against the schema. YAML values are
// round-tripped through JSON first so the validator sees JSON types only.
func (p *Parser) validate(raw map[string]any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("unsupported frontmatter value: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unsupported frontmatter value: %w", err)
	}

	err = p.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	leaf := firstLeaf(ve)
	return &ParseError{
		Field: utils.JSONPointerToPath(leaf.InstanceLocation),
		Err:   errors.New(leaf.Message),
	}
}

// dateFields are the keys decoded as calendar dates.
var dateFields = []string{"due", "completedDate"}

// checkDates reports the first date field holding a string that is not a
// date. Non-string values were already rejected by the schema.
func checkDates(raw map[string]any) *ParseError {
	for _, field := range dateFields {
		s, ok := raw[field].(string)
		if !ok {
			continue
		}
		if _, err := ParseDate(s); err != nil {
			return &ParseError{Field: field, Err: err}
		}
	}
	return nil
}

// firstLeaf walks to the most specific cause of a validation failure.
func firstLeaf(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}
