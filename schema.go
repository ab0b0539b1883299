package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// todoFields is the one place the request fields are described. The create
// and update shapes are both generated from it and differ only in which
// fields are required.
var todoFields = []fieldDef{
	{Name: "title", Schema: map[string]any{"type": "string", "minLength": 1}},
	{Name: "completed", Schema: map[string]any{"type": "boolean"}},
}

type fieldDef struct {
	Name   string
	Schema map[string]any
}

// BodySchema validates a decoded JSON request body.
type BodySchema struct {
	name   string
	schema *jsonschema.Schema
}

var (
	createTodoSchema = mustCompileBodySchema("create-todo", "title")
	updateTodoSchema = mustCompileBodySchema("update-todo")
)

func buildSchemaDocument(fields []fieldDef, required ...string) map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		props[f.Name] = f.Schema
	}
	doc := map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

func compileBodySchema(name string, required ...string) (*BodySchema, error) {
	raw, err := json.Marshal(buildSchemaDocument(todoFields, required...))
	if err != nil {
		return nil, err
	}

	url := "mem://schemas/" + name + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &BodySchema{name: name, schema: schema}, nil
}

func mustCompileBodySchema(name string, required ...string) *BodySchema {
	s, err := compileBodySchema(name, required...)
	if err != nil {
		panic(err)
	}
	return s
}

var errMalformedBody = errors.New("malformed JSON body")

// Decode checks body against the schema and then unmarshals it into dst.
// Schema violations come back as one message per failing field.
func (s *BodySchema) Decode(body []byte, dst any) ([]string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	if err := s.schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return violationMessages(ve), nil
		}
		return nil, err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil, nil
}

func violationMessages(ve *jsonschema.ValidationError) []string {
	var out []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			field := strings.TrimPrefix(e.InstanceLocation, "/")
			if field == "" {
				out = append(out, e.Message)
			} else {
				out = append(out, field+": "+e.Message)
			}
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	sort.Strings(out)
	return out
}
