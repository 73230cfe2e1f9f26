package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

// table drop order respects foreign keys: children before leads
var dropOrder = []string{"activities", "tasks", "logs", "notes", "leads"}

// Initialize prepares the schema and seeds demo data on first run.
// With forceReset all tables are dropped and recreated first.
func Initialize(ctx context.Context, db *sqlx.DB, forceReset bool) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	if forceReset {
		log.Printf("⚠️  FORCE_DB_RESET enabled, dropping all tables")
		if err := resetDatabase(ctx, db); err != nil {
			return fmt.Errorf("failed resetting database: %w", err)
		}
	}

	if err := createTables(ctx, db); err != nil {
		return fmt.Errorf("failed creating tables: %w", err)
	}

	seeded, err := insertSampleData(ctx, db)
	if err != nil {
		return fmt.Errorf("failed inserting sample data: %w", err)
	}
	if seeded {
		log.Printf("🌱 Sample data inserted")
	}

	return nil
}

func isSQLite(db *sqlx.DB) bool {
	return db.DriverName() == "sqlite3"
}

func resetDatabase(ctx context.Context, db *sqlx.DB) error {
	cascade := " CASCADE"
	if isSQLite(db) {
		cascade = ""
	}
	for _, table := range dropOrder {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s%s", table, cascade)); err != nil {
			return fmt.Errorf("dropping %s: %w", table, err)
		}
	}
	return nil
}

// createTables builds the schema. Deleting a lead keeps its tasks,
// activities and logs (lead_id goes NULL); only notes go with the lead.
func createTables(ctx context.Context, db *sqlx.DB) error {
	serial := "SERIAL PRIMARY KEY"
	if isSQLite(db) {
		serial = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS leads (
			id %s,
			name VARCHAR(255) NOT NULL,
			company VARCHAR(255),
			email VARCHAR(255) UNIQUE NOT NULL,
			phone VARCHAR(50),
			position VARCHAR(255),
			source VARCHAR(100),
			status VARCHAR(50) DEFAULT 'novo',
			responsible VARCHAR(255),
			score INTEGER DEFAULT 50,
			temperature VARCHAR(20) DEFAULT 'morno',
			value DECIMAL(10,2) DEFAULT 0,
			notes TEXT,
			last_contact DATE DEFAULT CURRENT_DATE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tasks (
			id %s,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			due_date DATE,
			priority VARCHAR(20) DEFAULT 'medium',
			status VARCHAR(20) DEFAULT 'pending',
			lead_id INTEGER REFERENCES leads(id) ON DELETE SET NULL,
			assignee VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS logs (
			id %s,
			type VARCHAR(50) NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			user_id VARCHAR(255),
			lead_id INTEGER REFERENCES leads(id) ON DELETE SET NULL
		)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS activities (
			id %s,
			lead_id INTEGER REFERENCES leads(id) ON DELETE SET NULL,
			type VARCHAR(50) NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			scheduled_date TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, serial),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS notes (
			id %s,
			lead_id INTEGER NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			color VARCHAR(20) DEFAULT 'blue',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			user_id VARCHAR(255)
		)`, serial),
		`CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_timestamp ON logs(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_type ON logs(type)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_scheduled ON activities(scheduled_date)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_lead_id ON notes(lead_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// insertSampleData seeds the demo dataset once. It reports whether the
// seed ran; a non-empty leads table means the database is already seeded.
func insertSampleData(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM leads"); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	leads := []struct {
		name, company, email, phone, position, status, source, responsible string
		score                                                              int
		temperature                                                        string
		value                                                              float64
		notes                                                              string
	}{
		{"João Silva", "Tech Corp", "joao.silva@techcorp.com", "(11) 99999-1234", "CTO",
			"novo", "website", "Maria Santos", 85, "quente", 50000,
			"Interessado em soluções de automação"},
		{"Ana Costa", "Inovação Ltda", "ana.costa@inovacao.com", "(11) 88888-5678", "Gerente de TI",
			"contato", "referral", "Carlos Oliveira", 72, "morno", 35000,
			"Precisa de aprovação da diretoria"},
		{"Pedro Santos", "Startup XYZ", "pedro@startupxyz.com", "(11) 77777-9012", "CEO",
			"qualificado", "event", "Maria Santos", 95, "quente", 75000,
			"Reunião agendada para próxima semana"},
	}
	for _, l := range leads {
		_, err := tx.ExecContext(ctx, db.Rebind(`INSERT INTO leads
			(name, company, email, phone, position, status, source, responsible, score, temperature, value, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			l.name, l.company, l.email, l.phone, l.position, l.status, l.source, l.responsible,
			l.score, l.temperature, l.value, l.notes)
		if err != nil {
			return false, fmt.Errorf("seeding leads: %w", err)
		}
	}

	tasks := []struct {
		title, description, dueDate, priority, status string
		leadID                                        int
		assignee                                      string
	}{
		{"Follow-up com João Silva", "Verificar interesse em proposta comercial",
			"2024-01-20", "high", "pending", 1, "Maria Santos"},
		{"Preparar demonstração", "Criar apresentação personalizada para Tech Corp",
			"2024-01-18", "medium", "pending", 1, "Carlos Oliveira"},
		{"Enviar proposta para Ana Costa", "Finalizar proposta comercial personalizada",
			"2024-01-22", "high", "pending", 2, "Carlos Oliveira"},
	}
	for _, t := range tasks {
		_, err := tx.ExecContext(ctx, db.Rebind(`INSERT INTO tasks
			(title, description, due_date, priority, status, lead_id, assignee)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
			t.title, t.description, t.dueDate, t.priority, t.status, t.leadID, t.assignee)
		if err != nil {
			return false, fmt.Errorf("seeding tasks: %w", err)
		}
	}

	activities := []struct {
		leadID                             *int
		typ, title, description, scheduled string
	}{
		{intPtr(1), "call", "Ligação de Follow-up - João Silva",
			"Verificar andamento da proposta e responder dúvidas", "2024-06-18T10:00:00"},
		{intPtr(1), "meeting", "Reunião de Demonstração - Tech Corp",
			"Apresentar solução completa para o time de TI", "2024-06-19T14:30:00"},
		{intPtr(2), "email", "Envio de Proposta - Ana Costa",
			"Enviar proposta comercial personalizada por email", "2024-06-20T09:00:00"},
		{intPtr(2), "call", "Agendamento Reunião - Inovação Ltda",
			"Ligar para agendar apresentação com diretoria", "2024-06-21T11:00:00"},
		{intPtr(3), "meeting", "Reunião Executiva - Startup XYZ",
			"Reunião com CEO para fechamento do contrato", "2024-06-22T16:00:00"},
		{nil, "task", "Atualização do CRM",
			"Revisar e atualizar dados de leads no sistema", "2024-06-23T08:00:00"},
		{intPtr(1), "call", "Check-in Semanal - João Silva",
			"Ligação de acompanhamento semanal", "2024-06-24T15:00:00"},
		{nil, "meeting", "Reunião de Planejamento",
			"Planejamento estratégico para próximo trimestre", "2024-06-25T10:30:00"},
	}
	for _, a := range activities {
		_, err := tx.ExecContext(ctx, db.Rebind(`INSERT INTO activities
			(lead_id, type, title, description, scheduled_date)
			VALUES (?, ?, ?, ?, ?)`),
			a.leadID, a.typ, a.title, a.description, a.scheduled)
		if err != nil {
			return false, fmt.Errorf("seeding activities: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func intPtr(v int) *int { return &v }
