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

package vecops

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMask(t *testing.T) {
	pt := []float32{25, 10, 40, 20}
	eta := []float32{-2.5, 0.3, 2.39, -1}
	id := []bool{true, true, true, false}

	mask, err := And(Greater(pt, 20), Less(Abs(eta), float32(2.4)), id)
	if err != nil {
		t.Fatalf("And() = %v", err)
	}
	if d := cmp.Diff([]bool{false, false, true, false}, mask); d != "" {
		t.Errorf("mask diff (-want, +got):\n%v", d)
	}
	if got, want := len(mask), len(pt); got != want {
		t.Errorf("len(mask) = %d, want %d", got, want)
	}
	if got, want := CountTrue(mask), 1; got != want {
		t.Errorf("CountTrue(mask) = %d, want %d", got, want)
	}

	got, err := Take(pt, mask)
	if err != nil {
		t.Fatalf("Take() = %v", err)
	}
	if d := cmp.Diff([]float32{40}, got); d != "" {
		t.Errorf("Take diff (-want, +got):\n%v", d)
	}
}

func TestTake_KeepsOrder(t *testing.T) {
	charge := []int32{-1, 1, 1, -1}
	got, err := Take(charge, []bool{true, false, true, true})
	if err != nil {
		t.Fatalf("Take() = %v", err)
	}
	if d := cmp.Diff([]int32{-1, 1, -1}, got); d != "" {
		t.Errorf("Take diff (-want, +got):\n%v", d)
	}
}

func TestLengthMismatch(t *testing.T) {
	if _, err := And([]bool{true}, []bool{true, false}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("And(mismatched) = %v, want ErrLengthMismatch", err)
	}
	if _, err := Take([]float32{1, 2}, []bool{true}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Take(mismatched) = %v, want ErrLengthMismatch", err)
	}
}

func TestEmpty(t *testing.T) {
	mask, err := And(Greater([]float32{}, 20), []bool{})
	if err != nil {
		t.Fatalf("And(empty) = %v", err)
	}
	if got := CountTrue(mask); got != 0 {
		t.Errorf("CountTrue(empty) = %d, want 0", got)
	}
	if got, err := And(); got != nil || err != nil {
		t.Errorf("And() = %v, %v, want nil, nil", got, err)
	}
}

func TestAt(t *testing.T) {
	v := []float32{3, 4}
	if got, err := At(v, 1); err != nil || got != 4 {
		t.Errorf("At(v, 1) = %v, %v, want 4, nil", got, err)
	}
	if _, err := At(v, 2); !errors.Is(err, ErrIndex) {
		t.Errorf("At(v, 2) = %v, want ErrIndex", err)
	}
}
