// Package notify delivers outbound email. Delivery is best effort by
// contract: implementations log failures and never return them to the
// caller, so a broken mail provider cannot fail an admissions flow.
package notify

import (
	"context"
	"fmt"
)

// Message is a single outbound email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	TextBody  string
}

// Mailer sends messages to applicants and administrators.
type Mailer interface {
	Send(ctx context.Context, msg Message)
}

// InvitationMessage builds the invitation email for an invite token.
func InvitationMessage(email, role, token string) Message {
	return Message{
		ToAddress: email,
		Subject:   "You have been invited to Campus Haiti",
		TextBody: fmt.Sprintf(
			"You have been invited to join Campus Haiti as %s.\n\n"+
				"Accept your invitation: https://campushaiti.org/auth/invite/%s\n\n"+
				"The invitation expires in 7 days.", role, token),
	}
}

// RegistrationDecisionMessage notifies a school registration contact.
func RegistrationDecisionMessage(email, schoolName string, approved bool) Message {
	if approved {
		return Message{
			ToAddress: email,
			Subject:   fmt.Sprintf("%s has been approved on Campus Haiti", schoolName),
			TextBody: fmt.Sprintf(
				"Good news: the registration of %s was approved.\n"+
					"An administrator invitation has been sent separately.", schoolName),
		}
	}
	return Message{
		ToAddress: email,
		Subject:   fmt.Sprintf("Registration of %s on Campus Haiti", schoolName),
		TextBody: fmt.Sprintf(
			"The registration of %s was not approved. "+
				"Reply to this message if you believe this is an error.", schoolName),
	}
}

// StatusChangedMessage notifies an applicant that a school moved their
// application to a new status.
func StatusChangedMessage(email, schoolName, status string) Message {
	return Message{
		ToAddress: email,
		Subject:   fmt.Sprintf("Your application to %s was updated", schoolName),
		TextBody: fmt.Sprintf(
			"The status of your application to %s changed to: %s.\n"+
				"Sign in to Campus Haiti to see the details.", schoolName, status),
	}
}
