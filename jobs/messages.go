package jobs

import "fmt"

func orderBody(orderID int64, status string) string {
	switch status {
	case "IN_PRODUCTION":
		return fmt.Sprintf("Order #%d is now in production.", orderID)
	case "READY":
		return fmt.Sprintf("Order #%d is ready for pickup.", orderID)
	case "COMPLETED":
		return fmt.Sprintf("Order #%d is complete. Thank you!", orderID)
	case "CANCELLED":
		return fmt.Sprintf("Order #%d was cancelled.", orderID)
	default:
		return fmt.Sprintf("Order #%d moved to %s.", orderID, status)
	}
}

func messageBody(messageID int64) string {
	return fmt.Sprintf("Your message #%d received a reply from our staff.", messageID)
}
