package tablebuilder

import (
	"testing"
)

func TestApplyConvention(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		convention NamingConvention
		want       string
	}{
		{name: "snake from spaces", input: "Order Date", convention: ConventionSnakeCase, want: "order_date"},
		{name: "snake from camel", input: "orderDate", convention: ConventionSnakeCase, want: "order_date"},
		{name: "snake from hyphen", input: "order-date", convention: ConventionSnakeCase, want: "order_date"},
		{name: "snake keeps acronym run", input: "JSONData", convention: ConventionSnakeCase, want: "json_data"},
		{name: "camel from snake", input: "order_date", convention: ConventionCamelCase, want: "OrderDate"},
		{name: "camel from spaces", input: "order date", convention: ConventionCamelCase, want: "OrderDate"},
		{name: "lowercase", input: "Order Date", convention: ConventionLowercase, want: "orderdate"},
		{name: "uppercase", input: "Order Date", convention: ConventionUppercase, want: "ORDERDATE"},
		{name: "unchanged", input: "Order Date", convention: ConventionUnchanged, want: "Order Date"},
		{name: "single token snake", input: "id", convention: ConventionSnakeCase, want: "id"},
		{name: "digits stay with token", input: "address2", convention: ConventionCamelCase, want: "Address2"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ApplyConvention(tt.input, tt.convention); got != tt.want {
				t.Errorf("ApplyConvention(%q, %v) = %q, want %q", tt.input, tt.convention, got, tt.want)
			}
		})
	}
}

func TestApplyConventionIdempotent(t *testing.T) {
	t.Parallel()

	conventions := []NamingConvention{
		ConventionUnchanged,
		ConventionSnakeCase,
		ConventionCamelCase,
		ConventionLowercase,
		ConventionUppercase,
	}
	inputs := []string{"Order Date", "orderDate", "order_date", "JSONData", "id", "USERNAME", "address2"}

	for _, nc := range conventions {
		for _, input := range inputs {
			once := ApplyConvention(input, nc)
			twice := ApplyConvention(once, nc)
			if once != twice {
				t.Errorf("ApplyConvention(%q, %v) not idempotent: %q -> %q", input, nc, once, twice)
			}
		}
	}
}

func TestParseNamingConvention(t *testing.T) {
	t.Parallel()

	if nc, err := ParseNamingConvention("snake_case"); err != nil || nc != ConventionSnakeCase {
		t.Errorf("ParseNamingConvention(snake_case) = %v, %v", nc, err)
	}
	if _, err := ParseNamingConvention("kebab-case"); err == nil {
		t.Error("ParseNamingConvention(kebab-case) expected an error")
	}
}
