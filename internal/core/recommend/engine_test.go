package recommend

import (
	"reflect"
	"testing"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

func TestRecommendDubaiBelow4000(t *testing.T) {
	got := Recommend(domain.PlaceDubai, domain.SalaryBelow4000)

	want := []domain.Product{{
		Name:  "DHA-Basic",
		Price: "864.00",
		Plan:  "NLSB",
		URL:   "https://gia-insurance-provider.com/dha-basic-nlsb",
	}}
	if !reflect.DeepEqual(got.Products, want) {
		t.Fatalf("products = %#v, want %#v", got.Products, want)
	}
	if got.Message != nil {
		t.Fatalf("expected nil message, got %q", *got.Message)
	}
}

func TestRecommendAbuDhabiBelowMinimum(t *testing.T) {
	got := Recommend(domain.PlaceAbuDhabi, domain.Salary4000To5000)

	if len(got.Products) != 0 {
		t.Fatalf("expected no products, got %#v", got.Products)
	}
	if got.Message == nil || *got.Message != "The minimum requirement for this product plan is above 5000 AED" {
		t.Fatalf("unexpected message: %v", got.Message)
	}
}

func TestRecommendTable(t *testing.T) {
	cases := []struct {
		place domain.Place
		band  domain.SalaryBand
		plans []string
	}{
		{domain.PlaceDubai, domain.Salary4000To5000, []string{"NLSB", "LSB"}},
		{domain.PlaceDubai, domain.SalaryAbove5000, []string{"NLSB", "LSB"}},
		{domain.PlaceDubai, domain.SalaryUnknown, []string{"LSB"}},
		{domain.PlaceAbuDhabi, domain.SalaryAbove5000, []string{"Premium"}},
		{domain.Place("Sharjah"), domain.SalaryAbove5000, []string{"Standard"}},
		{domain.Place(""), domain.SalaryAbove5000, []string{"Standard"}},
	}
	for _, tc := range cases {
		got := Recommend(tc.place, tc.band)
		plans := make([]string, 0, len(got.Products))
		for _, p := range got.Products {
			plans = append(plans, p.Plan)
		}
		if !reflect.DeepEqual(plans, tc.plans) {
			t.Fatalf("Recommend(%q, %q) plans = %v, want %v", tc.place, tc.band, plans, tc.plans)
		}
	}
}

func TestRecommendExactlyOneOfProductsOrMessage(t *testing.T) {
	places := []domain.Place{domain.PlaceDubai, domain.PlaceAbuDhabi, domain.Place("Sharjah"), domain.Place("")}
	bands := []domain.SalaryBand{domain.SalaryBelow4000, domain.Salary4000To5000, domain.SalaryAbove5000, domain.SalaryUnknown}

	for _, place := range places {
		for _, band := range bands {
			got := Recommend(place, band)
			hasProducts := len(got.Products) > 0
			hasMessage := got.Message != nil
			if hasProducts == hasMessage {
				t.Fatalf("Recommend(%q, %q): products=%d message=%v", place, band, len(got.Products), got.Message)
			}
			for _, p := range got.Products {
				if p.URL == "" || p.URL[:8] != "https://" {
					t.Fatalf("product %q has url %q without scheme", p.Name, p.URL)
				}
			}
		}
	}
}

func TestNewEngineAddsSchemeToBaseURL(t *testing.T) {
	e, err := NewEngine("plans.example.com/")
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	got := e.Recommend(domain.PlaceAbuDhabi, domain.SalaryAbove5000)
	if len(got.Products) != 1 {
		t.Fatalf("expected one product, got %#v", got.Products)
	}
	if got.Products[0].URL != "https://plans.example.com/abu-dhabi-premium" {
		t.Fatalf("url = %q", got.Products[0].URL)
	}
}

func TestLoadCatalogRejectsMissingMessages(t *testing.T) {
	if _, err := loadCatalog([]byte("products: {}\nurl_rules: [{name: x, path: y}]\n")); err == nil {
		t.Fatalf("expected error for catalog without messages")
	}
}
