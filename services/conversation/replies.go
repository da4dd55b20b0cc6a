package conversation

import (
	"fmt"
	"strings"

	"verdebot/models"
)

const (
	replyUnavailable = "Sorry, something went wrong on our side. Please send that again in a moment."

	replyManualScheduling = "I can't check the calendar right now, so I can't propose a time slot. " +
		"We'll contact you to schedule the work manually — your quote stands."

	replyNoAvailability = "I couldn't find a free slot matching that preference in the next two weeks. " +
		"Would another day or time of day work?"

	replyCancelled = "Alright, I've cancelled that. Just write me when you need a new quote."

	replyNothingPending = "There's nothing pending to confirm right now. " +
		"Tell me which service you need and I'll prepare a quote."

	replyScriptedAdvice = "I can help with quotes and bookings for garden work — hedge trimming, " +
		"tree pruning, lawn mowing, cleanups and more. What do you need?"

	replyAskDay = "When would you like us to come? Tell me a day (e.g. tomorrow, Friday, 12/09)."

	replyAskPartOfDay = "Morning or afternoon?"
)

func quoteReply(quote models.Quote) string {
	var sb strings.Builder
	sb.WriteString("Here's your quote:\n")
	for _, l := range quote.Lines {
		sb.WriteString(fmt.Sprintf("- %s: %.1fh × %.2f€/h = %.2f€\n", l.Service, l.Hours, l.Rate, l.Price))
	}
	sb.WriteString(fmt.Sprintf("Total: %.1fh, %.2f€.\n", quote.TotalHours, quote.TotalPrice))
	sb.WriteString("Would you like to book an appointment?")
	return sb.String()
}

func proposalReply(slot models.TimeRange) string {
	return fmt.Sprintf("I can offer %s, %s–%s. Shall I book it? (yes/no)",
		slot.Start.Format("Monday 02/01"),
		slot.Start.Format("15:04"),
		slot.End.Format("15:04"))
}

func confirmationReply(record models.BookingRecord) string {
	return fmt.Sprintf("Booked! %s at %s, estimated %.1fh, %.2f€ total. "+
		"We'll send a reminder the day before. Thank you!",
		record.Start.Format("Monday 02/01"),
		record.Start.Format("15:04"),
		record.TotalHours,
		record.TotalPrice)
}

func slotAbandonedReply() string {
	return "No problem, I've dropped that slot — your quote still stands. " +
		"Tell me another day or time of day and I'll look again."
}

func serviceIntro(services []models.ServiceType) string {
	names := make([]string, len(services))
	for i, s := range services {
		names[i] = string(s)
	}
	return fmt.Sprintf("Happy to quote %s. ", strings.Join(names, ", "))
}

func jobsSummary(jobs []models.Job) string {
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = string(j.Service)
	}
	return strings.Join(names, ", ")
}
