package form

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"
)

const reasonMultipleDocuments = "expected a single document"

// Parse turns draft text into a resource. It fails with a *ValidationError
// wrapping ErrParse for invalid YAML or more than one document, or
// ErrMissingAPIVersion when the result is not an object with a non-empty
// string apiVersion.
func Parse(text string) (*unstructured.Unstructured, error) {
	data, err := singleDocument(text)
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Err: ErrParse, Reason: err.Error()}
	}

	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, &ValidationError{Err: ErrMissingAPIVersion}
	}
	apiVersion, _ := obj["apiVersion"].(string)
	if strings.TrimSpace(apiVersion) == "" {
		return nil, &ValidationError{Err: ErrMissingAPIVersion}
	}
	return &unstructured.Unstructured{Object: obj}, nil
}

// singleDocument converts text to JSON. Empty documents between separators
// are ignored; empty input yields JSON null.
func singleDocument(text string) ([]byte, error) {
	reader := utilyaml.NewYAMLReader(bufio.NewReader(strings.NewReader(text)))
	data := []byte("null")
	found := 0
	for {
		chunk, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ValidationError{Err: ErrParse, Reason: err.Error()}
		}
		converted, err := yaml.YAMLToJSON(chunk)
		if err != nil {
			return nil, &ValidationError{Err: ErrParse, Reason: err.Error()}
		}
		if bytes.Equal(bytes.TrimSpace(converted), []byte("null")) {
			continue
		}
		found++
		if found > 1 {
			return nil, &ValidationError{Err: ErrParse, Reason: reasonMultipleDocuments}
		}
		data = converted
	}
	return data, nil
}
