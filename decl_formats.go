// decl_formats.go: Built-in declaration decoders
//
// Every decoder rejects unknown keys so that a misspelled field fails
// loudly instead of being ignored.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"go.yaml.in/yaml/v3"
)

func decodeJSON(data []byte, into *Declaration) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(into)
}

func decodeYAML(data []byte, into *Declaration) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(into); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func decodeTOML(data []byte, into *Declaration) error {
	md, err := toml.Decode(string(data), into)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// decodeHCL expects one argument block per argument, labelled with the
// destination key:
//
//	command = "ship"
//	argument "speed" {
//	  name     = "-s"
//	  type     = "float"
//	  defaults = ["1000"]
//	}
func decodeHCL(data []byte, into *Declaration) error {
	return hclsimple.Decode("declaration.hcl", data, nil, into)
}

// EncodeDeclaration renders a declaration as JSON, YAML or TOML.
func EncodeDeclaration(d *Declaration, format DeclFormat) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case DeclJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return nil, err
		}
	case DeclYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case DeclTOML:
		if err := toml.NewEncoder(&buf).Encode(d); err != nil {
			return nil, err
		}
	default:
		return nil, invalidDeclaration("cannot encode "+format.String()+" declarations", nil)
	}
	return buf.Bytes(), nil
}
