package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "document.schema.json"

// ValidationError reports the first field that failed the schema gate.
// Path uses dotted/indexed notation ("itens[1].valor_total"); "$" is the whole document.
type ValidationError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed at %s: %s", e.Path, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(BuildDocumentJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	s, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return s, nil
})

// Validate decodes raw JSON into a DocumentRecord after checking it against
// BuildDocumentJSONSchema. Null members are treated as absent. Any type
// mismatch yields a *ValidationError carrying the offending path.
func Validate(raw []byte) (*DocumentRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ValidationError{Path: "$", Message: "invalid JSON: " + err.Error(), Cause: err}
	}
	if dec.More() {
		return nil, &ValidationError{Path: "$", Message: "trailing data after JSON value"}
	}
	doc = dropNulls(doc)

	s, err := compiled()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := deepestCause(ve)
			return nil, &ValidationError{Path: pointerToPath(leaf.InstanceLocation), Message: leaf.Message, Cause: err}
		}
		return nil, &ValidationError{Path: "$", Message: err.Error(), Cause: err}
	}

	clean, err := json.Marshal(doc)
	if err != nil {
		return nil, &ValidationError{Path: "$", Message: err.Error(), Cause: err}
	}
	rec := NewDocumentRecord()
	if err := json.Unmarshal(clean, rec); err != nil {
		return nil, &ValidationError{Path: "$", Message: err.Error(), Cause: err}
	}
	if rec.LineItems == nil {
		rec.LineItems = []LineItem{}
	}
	if verr := checkAmounts(rec); verr != nil {
		return nil, verr
	}
	return rec, nil
}

// ValidateRecord runs a record built in Go through the same gate as external JSON.
func ValidateRecord(rec *DocumentRecord) error {
	if rec == nil {
		return &ValidationError{Path: "$", Message: "record is nil"}
	}
	if verr := checkAmounts(rec); verr != nil {
		return verr
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return &ValidationError{Path: "$", Message: err.Error(), Cause: err}
	}
	_, err = Validate(raw)
	return err
}

func dropNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if child == nil {
				delete(t, k)
				continue
			}
			t[k] = dropNulls(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = dropNulls(child)
		}
		return t
	default:
		return v
	}
}

func deepestCause(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// pointerToPath turns "/itens/1/valor_total" into "itens[1].valor_total".
func pointerToPath(ptr string) string {
	if ptr == "" || ptr == "/" {
		return "$"
	}
	var b strings.Builder
	for _, seg := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func checkAmounts(rec *DocumentRecord) *ValidationError {
	check := func(path string, v float64) *ValidationError {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			return &ValidationError{Path: path, Message: "must be a finite number"}
		case v < 0:
			return &ValidationError{Path: path, Message: "must be >= 0"}
		}
		return nil
	}

	fields := []struct {
		path string
		v    float64
	}{
		{"valor_total_nota", rec.TotalValue},
		{"totais_valores.base_calculo_principal", rec.Totals.PrincipalBase},
		{"totais_valores.valor_total_principal", rec.Totals.PrincipalTax},
		{"totais_valores.valor_total_adicional", rec.Totals.AdditionalTax},
		{"totais_valores.valor_total_contribuicao_a", rec.Totals.ContributionA},
		{"totais_valores.valor_total_contribuicao_b", rec.Totals.ContributionB},
		{"totais_valores.valor_outras_despesas", rec.Totals.OtherExpenses},
		{"totais_valores.valor_aprox_taxas_total", rec.Totals.ApproxTaxes},
	}
	for _, f := range fields {
		if err := check(f.path, f.v); err != nil {
			return err
		}
	}
	for i, it := range rec.LineItems {
		prefix := fmt.Sprintf("itens[%d].", i)
		for _, f := range []struct {
			name string
			v    float64
		}{
			{"quantidade", it.Quantity},
			{"valor_unitario", it.UnitValue},
			{"valor_total", it.LineTotal},
			{"valor_aprox_taxas", it.ApproxTaxValue},
		} {
			if err := check(prefix+f.name, f.v); err != nil {
				return err
			}
		}
	}
	return nil
}
