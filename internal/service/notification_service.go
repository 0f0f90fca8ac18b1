package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/salon-booking-api/internal/models"
	"github.com/noah-isme/salon-booking-api/internal/notify"
)

// NotificationTemplate selects the subject, body and recipient of an appointment email.
type NotificationTemplate string

const (
	TemplateBooked            NotificationTemplate = "booked"
	TemplateConfirmed         NotificationTemplate = "confirmed"
	TemplateUpdated           NotificationTemplate = "updated"
	TemplateRejected          NotificationTemplate = "rejected"
	TemplateCancelled         NotificationTemplate = "cancelled"
	TemplateCustomerCancelled NotificationTemplate = "customer_cancelled"
)

type emailTemplate struct {
	subject string
	body    *template.Template
	toStaff bool
}

var appointmentTemplates = map[NotificationTemplate]emailTemplate{
	TemplateBooked: {
		subject: "Your Appointment Has Been Booked",
		toStaff: true,
		body: template.Must(template.New("booked").Parse(`Dear {{.FirstName}},

A new appointment has been booked with you.

Appointment Details:
- Appointment ID: {{.AppointmentID}}
- Service: {{.ServiceName}}
- Date & Time: {{.AppointmentTime}}
- Client: {{.CounterpartName}}

Regards,
Your Service Team
`)),
	},
	TemplateConfirmed: {
		subject: "Your Appointment Has Been Confirmed",
		body: template.Must(template.New("confirmed").Parse(`Dear {{.FirstName}},

We are pleased to inform you that your appointment has been confirmed!

Appointment Details:
- Appointment ID: {{.AppointmentID}}
- Service: {{.ServiceName}}
- Date & Time: {{.AppointmentTime}}
- Staff: {{.CounterpartName}}

Thank you for choosing us!

Best regards,
Your Service Team
`)),
	},
	TemplateUpdated: {
		subject: "Your Appointment Has Been Updated",
		body: template.Must(template.New("updated").Parse(`Dear {{.FirstName}},

Your appointment has been successfully updated and is awaiting confirmation.

Appointment Details:
- Appointment ID: {{.AppointmentID}}
- Service: {{.ServiceName}}
- New Date & Time: {{.AppointmentTime}}
- Employee: {{.CounterpartName}}

Best regards,
Your Service Team
`)),
	},
	TemplateRejected: {
		subject: "Appointment Rejection",
		body: template.Must(template.New("rejected").Parse(`Dear {{.FirstName}},

We regret to inform you that your appointment with ID {{.AppointmentID}} has been rejected.

If you have any questions or would like to reschedule, please feel free to contact us.

Best regards,
Your Service Team
`)),
	},
	TemplateCancelled: {
		subject: "Appointment Cancellation",
		body: template.Must(template.New("cancelled").Parse(`Dear {{.FirstName}},

We regret to inform you that your appointment with ID {{.AppointmentID}} has been canceled.

If you have any questions or would like to reschedule, please feel free to contact us.

Best regards,
Your Service Team
`)),
	},
	TemplateCustomerCancelled: {
		subject: "Appointment Cancellation",
		toStaff: true,
		body: template.Must(template.New("customer_cancelled").Parse(`Dear {{.FirstName}},

{{.CounterpartName}} has cancelled appointment {{.AppointmentID}} ({{.ServiceName}}, {{.AppointmentTime}}).
The time slot is free again.

Regards,
Your Service Team
`)),
	},
}

type templateData struct {
	FirstName       string
	AppointmentID   string
	ServiceName     string
	AppointmentTime string
	CounterpartName string
}

// NotificationService renders appointment emails and hands them to a sender.
type NotificationService struct {
	sender   notify.Sender
	location *time.Location
	logger   *zap.Logger
}

// NewNotificationService constructs the service. Times are rendered in loc.
func NewNotificationService(sender notify.Sender, loc *time.Location, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &NotificationService{sender: sender, location: loc, logger: logger}
}

// NotifyAppointment sends the templated email for an appointment event.
func (s *NotificationService) NotifyAppointment(ctx context.Context, tmpl NotificationTemplate, detail *models.AppointmentDetail) error {
	entry, ok := appointmentTemplates[tmpl]
	if !ok {
		return fmt.Errorf("unknown notification template %q", tmpl)
	}
	if detail == nil {
		return fmt.Errorf("notification %s: missing appointment", tmpl)
	}

	data := templateData{
		AppointmentID:   detail.ID,
		ServiceName:     detail.ServiceName,
		AppointmentTime: detail.AppointmentTime.In(s.location).Format("2006-01-02 15:04"),
	}
	msg := notify.Message{Subject: entry.subject}
	if entry.toStaff {
		data.FirstName = detail.StaffFirstName
		data.CounterpartName = joinName(detail.CustomerFirstName, detail.CustomerLastName)
		msg.To = detail.StaffEmail
		msg.ToName = joinName(detail.StaffFirstName, detail.StaffLastName)
	} else {
		data.FirstName = detail.CustomerFirstName
		data.CounterpartName = joinName(detail.StaffFirstName, detail.StaffLastName)
		msg.To = detail.CustomerEmail
		msg.ToName = joinName(detail.CustomerFirstName, detail.CustomerLastName)
	}
	if msg.To == "" {
		return fmt.Errorf("notification %s: recipient has no email", tmpl)
	}

	var body bytes.Buffer
	if err := entry.body.Execute(&body, data); err != nil {
		return fmt.Errorf("render %s template: %w", tmpl, err)
	}
	msg.Body = body.String()

	if err := s.sender.Send(ctx, msg); err != nil {
		return err
	}
	s.logger.Debug("appointment notification sent", zap.String("template", string(tmpl)), zap.String("appointment_id", detail.ID))
	return nil
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
