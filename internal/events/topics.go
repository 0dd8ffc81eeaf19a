package events

const (
	TopicOrdersUpdated   = "storefront.orders.updated"
	TopicProductsUpdated = "storefront.products.updated"
)

// TopicFor routes an event type to its topic.
func TopicFor(eventType string) string {
	switch eventType {
	case EventOrdersUpdated:
		return TopicOrdersUpdated
	case EventProductsUpdated:
		return TopicProductsUpdated
	}
	return ""
}

// PartitionKey keeps the events of one order/user in order.
func PartitionKey(id string) []byte { return []byte(id) }
