package utils

// ContextKey namespaces values stored on request contexts
type ContextKey string

const (
	RequestIDKey      ContextKey = "request_id"
	UserAgentKey      ContextKey = "user_agent"
	IPAddressKey      ContextKey = "ip_address"
	EndpointKey       ContextKey = "endpoint"
	OrganizationIDKey ContextKey = "organization_id"
)
