// Package template renders the CloudFormation template that backs an environment:
// one shared EC2 host and artifact bucket, fixed IAM scaffolding, and a
// source → build → deploy pipeline per service.
package template

import (
	"encoding/json"
	"fmt"
)

// FormatVersion is the CloudFormation template format version.
const FormatVersion = "2010-09-09"

// Template is a CloudFormation template document.
type Template struct {
	AWSTemplateFormatVersion string               `json:"AWSTemplateFormatVersion"`
	Description              string               `json:"Description"`
	Parameters               map[string]Parameter `json:"Parameters,omitempty"`
	Resources                map[string]Resource  `json:"Resources"`
	Outputs                  map[string]Output    `json:"Outputs,omitempty"`
}

// Parameter is a template input parameter.
type Parameter struct {
	Type    string `json:"Type"`
	Default string `json:"Default,omitempty"`
}

// Resource is a single template resource.
type Resource struct {
	Type       string         `json:"Type"`
	Properties map[string]any `json:"Properties"`
}

// Output is a stack output value.
type Output struct {
	Value any `json:"Value"`
}

// JSON renders the template body submitted to CloudFormation.
func (t *Template) JSON() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("marshal template: %w", err)
	}
	return string(b), nil
}

// Ref is the CloudFormation Ref intrinsic.
func Ref(name string) map[string]any {
	return map[string]any{"Ref": name}
}

// GetAtt is the CloudFormation Fn::GetAtt intrinsic.
func GetAtt(resource, attribute string) map[string]any {
	return map[string]any{"Fn::GetAtt": []string{resource, attribute}}
}

// tag is a resource tag entry.
type tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}
