// Package recommend maps a normalised issuing place and salary band onto
// insurance products.
package recommend

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

const DefaultBaseURL = "https://gia-insurance-provider.com/"

//go:embed catalog.yaml
var catalogYAML []byte

type catalogProduct struct {
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
	Plan  string `yaml:"plan"`
}

type urlRule struct {
	Name string `yaml:"name"`
	Plan string `yaml:"plan"`
	Path string `yaml:"path"`
}

type catalog struct {
	Products struct {
		DubaiNLSB       catalogProduct `yaml:"dubai_nlsb"`
		DubaiLSB        catalogProduct `yaml:"dubai_lsb"`
		AbuDhabiPremium catalogProduct `yaml:"abu_dhabi_premium"`
		General         catalogProduct `yaml:"general"`
	} `yaml:"products"`
	Messages struct {
		AbuDhabiMinimum       string `yaml:"abu_dhabi_minimum"`
		AbuDhabiSalaryUnknown string `yaml:"abu_dhabi_salary_unknown"`
		PlaceUnknown          string `yaml:"place_unknown"`
	} `yaml:"messages"`
	URLRules []urlRule `yaml:"url_rules"`
}

func loadCatalog(raw []byte) (catalog, error) {
	var c catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return catalog{}, fmt.Errorf("parse product catalog: %w", err)
	}
	if c.Messages.AbuDhabiMinimum == "" || c.Messages.AbuDhabiSalaryUnknown == "" || c.Messages.PlaceUnknown == "" {
		return catalog{}, fmt.Errorf("product catalog: advisory messages are required")
	}
	if len(c.URLRules) == 0 {
		return catalog{}, fmt.Errorf("product catalog: url rules are required")
	}
	return c, nil
}

// Engine evaluates the recommendation table against the embedded catalog.
type Engine struct {
	catalog catalog
	baseURL string
}

// NewEngine builds an engine whose product URLs are rooted at baseURL.
// A base URL without a scheme is served over https.
func NewEngine(baseURL string) (*Engine, error) {
	c, err := loadCatalog(catalogYAML)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Engine{catalog: c, baseURL: ensureScheme(baseURL)}, nil
}

var defaultEngine = mustEngine(DefaultBaseURL)

func mustEngine(baseURL string) *Engine {
	e, err := NewEngine(baseURL)
	if err != nil {
		panic(err)
	}
	return e
}

// Recommend evaluates the table with the default product base URL.
func Recommend(place domain.Place, band domain.SalaryBand) domain.Recommendation {
	return defaultEngine.Recommend(place, band)
}

// Recommend returns either a non-empty product list or an advisory message.
func (e *Engine) Recommend(place domain.Place, band domain.SalaryBand) domain.Recommendation {
	p := e.catalog.Products
	m := e.catalog.Messages

	switch place {
	case domain.PlaceDubai:
		switch band {
		case domain.SalaryBelow4000:
			return e.products(p.DubaiNLSB)
		case domain.Salary4000To5000, domain.SalaryAbove5000:
			return e.products(p.DubaiNLSB, p.DubaiLSB)
		default:
			return e.products(p.DubaiLSB)
		}
	case domain.PlaceAbuDhabi:
		switch band {
		case domain.SalaryBelow4000, domain.Salary4000To5000:
			return advisory(m.AbuDhabiMinimum)
		case domain.SalaryAbove5000:
			return e.products(p.AbuDhabiPremium)
		default:
			return advisory(m.AbuDhabiSalaryUnknown)
		}
	default:
		if band == domain.SalaryAbove5000 {
			return e.products(p.General)
		}
		return advisory(m.PlaceUnknown)
	}
}

func (e *Engine) products(items ...catalogProduct) domain.Recommendation {
	out := make([]domain.Product, 0, len(items))
	for _, it := range items {
		out = append(out, domain.Product{
			Name:  it.Name,
			Price: it.Price,
			Plan:  it.Plan,
			URL:   e.productURL(it.Name, it.Plan),
		})
	}
	return domain.Recommendation{Products: out}
}

func advisory(msg string) domain.Recommendation {
	return domain.Recommendation{Products: []domain.Product{}, Message: &msg}
}

func (e *Engine) productURL(name, plan string) string {
	for _, rule := range e.catalog.URLRules {
		if !strings.Contains(name, rule.Name) {
			continue
		}
		if rule.Plan != "" && rule.Plan != plan {
			continue
		}
		return ensureScheme(strings.TrimRight(e.baseURL, "/") + "/" + strings.TrimLeft(rule.Path, "/"))
	}
	return e.baseURL
}

func ensureScheme(u string) string {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + u
}
