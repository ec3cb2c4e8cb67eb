// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package plan

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/walteh/logfix/pkg/text"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return hasExt(filename, ".hcl")
}

// 📝 Parse parses the plan from HCL
//
//	name = "deribit-wrapper"
//
//	file "deribit_wrapper/trading.py" {
//	  insertion "logging-import" {
//	    marker = "import logging"
//	    suffix = "import time\n"
//	    text   = "import logging\n"
//	  }
//	  rule "settlement" {
//	    from = "print('Settlement in progress.')"
//	    to   = "logger.info('Settlement in progress.')"
//	  }
//	}
//
//	verify {
//	  pattern = "print("
//	}
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Plan, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "plan.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"verify_pattern": cty.StringVal(DefaultVerifyPattern),
		},
	}

	// Define HCL schema
	type hclPlan struct {
		Name  string `hcl:"name,optional"`
		Files []struct {
			Path       string `hcl:"path,label"`
			Insertions []struct {
				Name   string `hcl:"name,label"`
				Marker string `hcl:"marker,optional"`
				Prefix string `hcl:"prefix,optional"`
				Suffix string `hcl:"suffix,optional"`
				Text   string `hcl:"text"`
			} `hcl:"insertion,block"`
			Rules []struct {
				Name string `hcl:"name,label"`
				From string `hcl:"from"`
				To   string `hcl:"to"`
			} `hcl:"rule,block"`
		} `hcl:"file,block"`
		Verify *struct {
			Pattern string `hcl:"pattern,optional"`
		} `hcl:"verify,block"`
	}

	var hp hclPlan
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hp)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	pl := &Plan{Name: hp.Name}
	if hp.Verify != nil {
		pl.Verify.Pattern = hp.Verify.Pattern
	}
	for _, hf := range hp.Files {
		f := File{Path: hf.Path}
		for _, hi := range hf.Insertions {
			f.Insertions = append(f.Insertions, text.Insertion{
				Name:   hi.Name,
				Marker: hi.Marker,
				Prefix: hi.Prefix,
				Suffix: hi.Suffix,
				Text:   hi.Text,
			})
		}
		for _, hr := range hf.Rules {
			f.Rules = append(f.Rules, text.ReplacementRule{
				Name:     hr.Name,
				FromText: hr.From,
				ToText:   hr.To,
			})
		}
		pl.Files = append(pl.Files, f)
	}

	return pl, nil
}
