package support

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"bakery-support-be/pkg/conversation"
)

const (
	DefaultTicketsFile = "support_tickets.json"

	PriorityLow    = "baja"
	PriorityMedium = "media"
	PriorityHigh   = "alta"

	StatusOpen = "abierto"
)

var phoneCleaner = regexp.MustCompile(`[\s\-\(\)]+`)

// ContactInfo is what the customer leaves so a human can reach back.
type ContactInfo struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

// Ticket is one escalation to the human support team.
type Ticket struct {
	TicketID            string                  `json:"ticket_id"`
	Timestamp           string                  `json:"timestamp"`
	Query               string                  `json:"query"`
	LastResponse        string                  `json:"last_response"`
	ConversationHistory []conversation.Exchange `json:"conversation_history"`
	ContactInfo         ContactInfo             `json:"contact_info"`
	Priority            string                  `json:"priority"`
	Reason              string                  `json:"reason"`
	Status              string                  `json:"status"`
}

// Notifier delivers ticket emails. Delivery failures never fail the ticket.
type Notifier interface {
	NotifyTeam(ticket *Ticket) error
	ConfirmToClient(ticket *Ticket) error
}

// System persists tickets to a JSON file and notifies by email when a
// notifier is configured.
type System struct {
	mu          sync.Mutex
	ticketsFile string
	notifier    Notifier
	validate    *validator.Validate
	logger      *log.Logger
}

func NewSystem(ticketsFile string, notifier Notifier, logger *log.Logger) *System {
	if ticketsFile == "" {
		ticketsFile = DefaultTicketsFile
	}
	if logger == nil {
		logger = log.Default()
	}
	return &System{
		ticketsFile: ticketsFile,
		notifier:    notifier,
		validate:    validator.New(),
		logger:      logger,
	}
}

// ValidateContactInfo returns every problem found with the contact details,
// in Spanish, ready to show the customer.
func (s *System) ValidateContactInfo(contact ContactInfo) []string {
	var errors []string

	name := strings.TrimSpace(contact.Name)
	if len([]rune(name)) < 2 {
		errors = append(errors, "El nombre debe tener al menos 2 caracteres")
	} else if len([]rune(name)) > 100 {
		errors = append(errors, "El nombre es demasiado largo")
	}

	if err := s.validate.Var(contact.Email, "required,email"); err != nil {
		errors = append(errors, "El formato del email no es válido")
	}

	cleaned := phoneCleaner.ReplaceAllString(contact.Phone, "")
	switch {
	case cleaned == "" || !isDigits(cleaned):
		errors = append(errors, "El teléfono solo debe contener números")
	case len(cleaned) < 10:
		errors = append(errors, "El teléfono debe tener al menos 10 dígitos")
	case len(cleaned) > 15:
		errors = append(errors, "El teléfono es demasiado largo")
	}

	return errors
}

// CreateTicket validates the contact details, persists the ticket and fires
// the notifications. Returns the ticket ID.
func (s *System) CreateTicket(query, response string, history []conversation.Exchange, contact ContactInfo, priority, reason string) (string, error) {
	if validationErrors := s.ValidateContactInfo(contact); len(validationErrors) > 0 {
		return "", fmt.Errorf("información de contacto inválida: %s", strings.Join(validationErrors, ", "))
	}
	if priority == "" {
		priority = PriorityMedium
	}

	ticket := &Ticket{
		TicketID:            fmt.Sprintf("TICKET-%d", time.Now().Unix()),
		Timestamp:           time.Now().Format(time.RFC3339),
		Query:               query,
		LastResponse:        response,
		ConversationHistory: history,
		ContactInfo:         contact,
		Priority:            priority,
		Reason:              reason,
		Status:              StatusOpen,
	}
	if ticket.ConversationHistory == nil {
		ticket.ConversationHistory = []conversation.Exchange{}
	}

	if err := s.appendToFile(ticket); err != nil {
		return "", err
	}
	s.logger.Printf("[INFO] Ticket creado: %s", ticket.TicketID)

	if s.notifier != nil {
		if err := s.notifier.NotifyTeam(ticket); err != nil {
			s.logger.Printf("[ERROR] Error al enviar notificación al equipo: %v", err)
		}
		if err := s.notifier.ConfirmToClient(ticket); err != nil {
			s.logger.Printf("[ERROR] Error al enviar confirmación al cliente: %v", err)
		}
	}

	return ticket.TicketID, nil
}

func (s *System) appendToFile(ticket *Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tickets []Ticket
	data, err := os.ReadFile(s.ticketsFile)
	if err == nil {
		// Corrupted files start over rather than blocking new tickets.
		if jsonErr := json.Unmarshal(data, &tickets); jsonErr != nil {
			s.logger.Printf("[WARN] Tickets file corrupted, restarting: %v", jsonErr)
			tickets = nil
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	tickets = append(tickets, *ticket)
	out, err := json.MarshalIndent(tickets, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.ticketsFile, out, 0644)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
