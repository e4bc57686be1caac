// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dimuon_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"lostluck.dev/rdf-go/analysis/dimuon"
)

func TestReadConfig(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		want  dimuon.Config
		field string // Set when a ConfigError is expected.
	}{
		{
			name: "empty",
			want: dimuon.DefaultConfig(),
		}, {
			name: "overrides",
			yaml: "min_pt: 25\nmax_rel_iso: 0.1\n",
			want: dimuon.Config{
				Triggers:  []string{dimuon.ColTriggerIsoMu24, dimuon.ColTriggerIsoMu18},
				MinPt:     25,
				MaxAbsEta: 2.4,
				MaxRelIso: 0.1,
			},
		}, {
			name: "triggers",
			yaml: "triggers: [HLT_IsoMu27, HLT_Mu50]\n",
			want: dimuon.Config{
				Triggers:  []string{"HLT_IsoMu27", "HLT_Mu50"},
				MinPt:     20,
				MaxAbsEta: 2.4,
				MaxRelIso: 0.15,
			},
		}, {
			name:  "unknown field",
			yaml:  "min_ptt: 25\n",
			field: "",
		}, {
			name:  "one trigger",
			yaml:  "triggers: [HLT_IsoMu24]\n",
			field: "triggers",
		}, {
			name:  "negative pt",
			yaml:  "min_pt: -1\n",
			field: "min_pt",
		}, {
			name:  "zero eta",
			yaml:  "max_abs_eta: 0\n",
			field: "max_abs_eta",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := dimuon.ReadConfig(strings.NewReader(test.yaml))
			if test.want.Triggers == nil {
				var cerr *dimuon.ConfigError
				if !errors.As(err, &cerr) {
					t.Fatalf("ReadConfig() = %v, want a ConfigError", err)
				}
				if cerr.Field != test.field {
					t.Errorf("ConfigError.Field = %q, want %q", cerr.Field, test.field)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadConfig() = %v", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selection.yaml")
	if err := os.WriteFile(path, []byte("max_abs_eta: 2.1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := dimuon.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() = %v", err)
	}
	if got, want := cfg.MaxAbsEta, float32(2.1); got != want {
		t.Errorf("MaxAbsEta = %v, want %v", got, want)
	}

	_, err = dimuon.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	var cerr *dimuon.ConfigError
	if !errors.As(err, &cerr) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig() of a missing file = %v, want a ConfigError wrapping %v", err, os.ErrNotExist)
	}
}
