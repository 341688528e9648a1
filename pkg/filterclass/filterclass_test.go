package filterclass

import (
	"testing"

	"fupd/pkg/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    model.FilterKind
		autnum  uint32
		wantErr bool
	}{
		{name: "plain as-set", input: "AS-CUSTOMERS", kind: model.KindAsSet},
		{name: "plain route-set", input: "RS-EXPORT", kind: model.KindRouteSet},
		{name: "plain autnum", input: "AS65001", kind: model.KindAutNum, autnum: 65001},
		{name: "lowercase as-set", input: "as-customers", kind: model.KindAsSet},
		{name: "hierarchical as-set", input: "AS-CUSTOMERS:AS65000", kind: model.KindAsSet},
		{name: "hierarchical route-set", input: "AS65000:RS-EXPORT:AS2", kind: model.KindRouteSet},
		{name: "hierarchical leading autnum only", input: "AS1:AS2", wantErr: true},
		{name: "no matching component", input: "foo:bar", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %+v", got)
				}
				var invalid *model.InvalidFilterError
				if _, ok := err.(*model.InvalidFilterError); !ok {
					t.Errorf("expected *model.InvalidFilterError, got %T", err)
				}
				_ = invalid
				return
			}
			if err != nil {
				t.Fatalf("Classify(%q): %v", tt.input, err)
			}
			if got.Kind != tt.kind {
				t.Errorf("got kind %v, want %v", got.Kind, tt.kind)
			}
			if tt.kind == model.KindAutNum && got.AutNum != tt.autnum {
				t.Errorf("got autnum %d, want %d", got.AutNum, tt.autnum)
			}
		})
	}
}

func TestClassify_NeverPanics(t *testing.T) {
	inputs := []string{"", ":", ":::", "as", "rs", "AS", "as-", "rs-", "1234", "AS4294967296"}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Classify(%q) panicked: %v", in, r)
				}
			}()
			Classify(in)
		}()
	}
}
