package telegram

import (
	"fmt"
	"strings"

	"github.com/kirillkom/paperless-concierge/internal/core/domain"
)

const maxListedDocuments = 5

func welcomeText(user *domain.UserContext) string {
	return fmt.Sprintf(
		"Welcome to Paperless Concierge, %s.\n\n"+
			"Send me a document or photo and I will file it for you.\n"+
			"Ask about your documents with /query <question>.",
		user.Name,
	)
}

func helpText() string {
	return "Send any document or photo to upload it.\n" +
		"/query <question> - search your documents\n" +
		"/help - this message"
}

func deniedText(userID int64) string {
	return fmt.Sprintf("Access denied. You are not authorized to use this bot.\nYour ID: %d", userID)
}

func uploadErrorText(userID int64, filename string, err error) string {
	switch {
	case domain.IsKind(err, domain.ErrUnauthorized):
		return deniedText(userID)
	case domain.IsKind(err, domain.ErrRejected):
		return fmt.Sprintf("The backend refused %s. Check the file format and try again.", filename)
	case domain.IsKind(err, domain.ErrTransport):
		return fmt.Sprintf("Could not reach the document store for %s. Please try again later.", filename)
	default:
		return fmt.Sprintf("Upload of %s failed.", filename)
	}
}

func progressText(filename string, status domain.JobStatus) string {
	switch status {
	case domain.StatusQueued:
		return fmt.Sprintf("%s uploaded, waiting in the processing queue ...", filename)
	case domain.StatusProcessing:
		return fmt.Sprintf("%s is being processed ...", filename)
	case domain.StatusCompleted:
		return fmt.Sprintf("%s processed successfully. Use /query to find it.", filename)
	case domain.StatusFailed:
		return fmt.Sprintf("Processing of %s failed. Try uploading again or check the file.", filename)
	case domain.StatusTimedOut:
		return fmt.Sprintf("%s is still processing. Check back later or use the status button.", filename)
	default:
		return fmt.Sprintf("%s submitted ...", filename)
	}
}

func manualStatusText(status domain.JobStatus) string {
	switch status {
	case domain.StatusCompleted:
		return "Document processed successfully."
	case domain.StatusFailed:
		return "Processing failed. Try uploading again."
	case domain.StatusUnknown:
		return "Task finished or not visible yet. Try /query to find your document."
	default:
		return fmt.Sprintf("Still processing (status: %s).", status)
	}
}

func answerText(question string, answer *domain.Answer) string {
	switch answer.Source {
	case domain.SourceAI:
		return answer.Text

	case domain.SourceSearch:
		var sb strings.Builder
		fmt.Fprintf(&sb, "Found %d documents:\n\n", answer.Total)
		for i, doc := range answer.Documents {
			if i == maxListedDocuments {
				fmt.Fprintf(&sb, "... and %d more.\n", answer.Total-maxListedDocuments)
				break
			}
			created := doc.Created
			if len(created) > 10 {
				created = created[:10]
			}
			fmt.Fprintf(&sb, "- %s (%s)\n", doc.Title, created)
		}
		return sb.String()

	default:
		return fmt.Sprintf("No documents found for: %s", question)
	}
}
