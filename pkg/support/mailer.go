package support

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

type emailNotifier struct {
	dialer      *gomail.Dialer
	senderEmail string
	teamEmail   string
}

// NewEmailNotifier sends ticket notifications over SMTP. teamEmail receives
// the internal alerts; the customer gets a confirmation at their own address.
func NewEmailNotifier(host string, port int, username, password, senderEmail, teamEmail string) Notifier {
	return &emailNotifier{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		teamEmail:   teamEmail,
	}
}

func (n *emailNotifier) NotifyTeam(ticket *Ticket) error {
	subject := fmt.Sprintf("🆕 NUEVO TICKET de soporte - %s - Prioridad: %s",
		ticket.TicketID, strings.ToUpper(ticket.Priority))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
			<h2 style="color: #8B4513;">Nuevo Ticket de Soporte</h2>
			<div style="background-color: #f9f9f9; padding: 15px; border-radius: 5px;">
				<p><strong>ID del Ticket:</strong> %s</p>
				<p><strong>Fecha:</strong> %s</p>
				<p><strong>Prioridad:</strong> <span style="color: %s">%s</span></p>
				<p><strong>Razón:</strong> %s</p>
			</div>
			<div style="background-color: #fff8e1; padding: 15px; border-radius: 5px;">
				<h3 style="color: #8B4513;">Información de Contacto</h3>
				<p><strong>Nombre:</strong> %s</p>
				<p><strong>Email:</strong> %s</p>
				<p><strong>Teléfono:</strong> %s</p>
			</div>
			<div style="background-color: #e8f5e9; padding: 15px; border-radius: 5px;">
				<h3 style="color: #8B4513;">Última Consulta</h3>
				<p>%s</p>
			</div>
			<div style="background-color: #e3f2fd; padding: 15px; border-radius: 5px;">
				<h3 style="color: #8B4513;">Última Respuesta del Chatbot</h3>
				<p>%s</p>
			</div>
			<p style="margin-top: 20px; font-size: 0.9em; color: #666;">
				Por favor, atiende este ticket lo antes posible.
			</p>
		</div>
	`,
		ticket.TicketID,
		ticket.Timestamp,
		priorityColor(ticket.Priority),
		strings.ToUpper(ticket.Priority),
		ticket.Reason,
		ticket.ContactInfo.Name,
		ticket.ContactInfo.Email,
		ticket.ContactInfo.Phone,
		ticket.Query,
		ticket.LastResponse,
	)

	return n.send(n.teamEmail, subject, body)
}

func (n *emailNotifier) ConfirmToClient(ticket *Ticket) error {
	subject := "✅ Confirmación de tu solicitud de soporte - Masa Madre Monterrey"

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
			<h2 style="color: #8B4513;">Hemos recibido tu solicitud</h2>
			<p>Gracias por contactar a Masa Madre Monterrey. Hemos recibido tu solicitud de soporte y nuestro equipo se pondrá en contacto contigo pronto.</p>
			<div style="background-color: #f9f9f9; padding: 15px; border-radius: 5px; margin: 20px 0;">
				<h3 style="color: #8B4513; margin-top: 0;">Resumen de tu solicitud</h3>
				<p><strong>Número de ticket:</strong> %s</p>
				<p><strong>Fecha:</strong> %s</p>
				<p><strong>Consulta:</strong> %s</p>
			</div>
			<p>Te contactaremos en un plazo máximo de 24 horas hábiles a través de %s o %s.</p>
			<p style="border-top: 1px solid #eee; padding-top: 20px; margin-top: 30px; font-size: 0.8em; color: #999;">
				Atentamente,<br>
				<strong>Equipo de Soporte - Masa Madre Monterrey</strong>
			</p>
		</div>
	`,
		ticket.TicketID,
		ticket.Timestamp,
		ticket.Query,
		ticket.ContactInfo.Email,
		ticket.ContactInfo.Phone,
	)

	return n.send(ticket.ContactInfo.Email, subject, body)
}

func (n *emailNotifier) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.senderEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return n.dialer.DialAndSend(m)
}

func priorityColor(priority string) string {
	switch priority {
	case PriorityHigh:
		return "#d9534f"
	case PriorityMedium:
		return "#f0ad4e"
	default:
		return "#5bc0de"
	}
}
