// Package testdata generates realistic demo data for the CRM.
package testdata

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jmoiron/sqlx"

	"github.com/jordanlanch/leadpipe/pkg/models"
)

// LeadGeneratorConfig configures lead generation parameters
type LeadGeneratorConfig struct {
	Count         int
	MinScore      int // 0-100
	MaxScore      int // 0-100
	MaxValue      float64
	PhoneChance   float64 // 0.0-1.0 (probability of having a phone)
	CompanyChance float64
	NotesChance   float64
}

var (
	sources      = []string{"website", "indicacao", "linkedin", "evento", "cold-call", "google-ads"}
	positions    = []string{"CEO", "CTO", "Diretor Comercial", "Gerente de Vendas", "Gerente de TI", "Analista de Compras", "Sócio"}
	responsibles = []string{"João", "Maria", "Carlos"}

	firstNames = []string{"João", "Maria", "Pedro", "Ana", "Carlos", "Fernanda", "Lucas", "Juliana",
		"Rafael", "Camila", "Bruno", "Patrícia", "Gustavo", "Larissa", "Rodrigo", "Beatriz"}
	lastNames = []string{"Silva", "Santos", "Oliveira", "Souza", "Costa", "Pereira", "Almeida",
		"Ferreira", "Rodrigues", "Lima", "Gomes", "Ribeiro", "Martins", "Carvalho"}

	companyPrefixes = []string{"Tech", "Inova", "Digital", "Smart", "Global", "Prime", "Mega", "Ultra", "Nova", "Alpha"}
	companySuffixes = []string{"Corp", "Solutions", "Sistemas", "Consultoria", "Tecnologia", "Group", "Brasil", "Labs"}
)

// GeneratePersonName creates a realistic Brazilian name.
func GeneratePersonName() string {
	return fmt.Sprintf("%s %s",
		firstNames[rand.Intn(len(firstNames))],
		lastNames[rand.Intn(len(lastNames))])
}

// GenerateCompanyName creates a realistic company name.
func GenerateCompanyName() string {
	return fmt.Sprintf("%s %s",
		companyPrefixes[rand.Intn(len(companyPrefixes))],
		companySuffixes[rand.Intn(len(companySuffixes))])
}

// GenerateLead creates a single lead with realistic data. Email is
// derived from the name plus a random suffix so bulk runs stay unique.
func GenerateLead(config LeadGeneratorConfig) models.LeadRequest {
	name := GeneratePersonName()

	local := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	local = strings.Map(stripAccent, local)
	email := fmt.Sprintf("%s.%d@%s", local, rand.Intn(10000), gofakeit.DomainName())

	score := config.MinScore + rand.Intn(config.MaxScore-config.MinScore+1)
	statuses := models.LeadStatuses()
	status := statuses[rand.Intn(len(statuses))]
	temperatures := []string{models.TemperatureFrio, models.TemperatureMorno, models.TemperatureQuente}
	temperature := temperatures[rand.Intn(len(temperatures))]
	value := float64(rand.Intn(int(config.MaxValue/1000))+1) * 1000
	responsible := responsibles[rand.Intn(len(responsibles))]
	source := sources[rand.Intn(len(sources))]
	position := positions[rand.Intn(len(positions))]

	req := models.LeadRequest{
		Name:        name,
		Email:       email,
		Status:      status,
		Responsible: &responsible,
		Score:       &score,
		Temperature: temperature,
		Value:       &value,
		Source:      &source,
		Position:    &position,
	}

	if rand.Float64() < config.CompanyChance {
		company := GenerateCompanyName()
		req.Company = &company
	}
	if rand.Float64() < config.PhoneChance {
		phone := fmt.Sprintf("(11) 9%04d-%04d", rand.Intn(10000), rand.Intn(10000))
		req.Phone = &phone
	}
	if rand.Float64() < config.NotesChance {
		notes := gofakeit.Sentence(8)
		req.Notes = &notes
	}

	return req
}

// GenerateLeads creates multiple leads with the given config
func GenerateLeads(config LeadGeneratorConfig) []models.LeadRequest {
	leads := make([]models.LeadRequest, config.Count)
	for i := range leads {
		leads[i] = GenerateLead(config)
	}
	return leads
}

// DefaultConfig is the distribution used by cmd/seed.
func DefaultConfig(count int) LeadGeneratorConfig {
	return LeadGeneratorConfig{
		Count:         count,
		MinScore:      20,
		MaxScore:      95,
		MaxValue:      200000,
		PhoneChance:   0.8,
		CompanyChance: 0.9,
		NotesChance:   0.4,
	}
}

// BulkInsertLeads inserts generated leads in batches.
func BulkInsertLeads(ctx context.Context, db *sqlx.DB, leads []models.LeadRequest, batchSize int) error {
	query := db.Rebind(`INSERT INTO leads
		(name, company, email, phone, position, source, status, responsible, score, temperature, value, notes, last_contact)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	for i := 0; i < len(leads); i += batchSize {
		end := i + batchSize
		if end > len(leads) {
			end = len(leads)
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin batch %d-%d: %w", i, end, err)
		}
		for _, l := range leads[i:end] {
			lastContact := time.Now().AddDate(0, 0, -rand.Intn(30)).Format("2006-01-02")
			if _, err := tx.ExecContext(ctx, query,
				l.Name, l.Company, l.Email, l.Phone, l.Position, l.Source,
				l.Status, l.Responsible, l.Score, l.Temperature, l.Value, l.Notes, lastContact); err != nil {
				tx.Rollback()
				return fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func stripAccent(r rune) rune {
	switch r {
	case 'á', 'à', 'ã', 'â':
		return 'a'
	case 'é', 'ê':
		return 'e'
	case 'í':
		return 'i'
	case 'ó', 'õ', 'ô':
		return 'o'
	case 'ú':
		return 'u'
	case 'ç':
		return 'c'
	}
	return r
}
