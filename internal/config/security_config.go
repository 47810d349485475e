// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps HTTP route names and gRPC full method names to
// their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Operational - Public
	"Healthz":                      SecurityPublic,
	"Metrics":                      SecurityPublic,
	"/grpc.health.v1.Health/Check": SecurityPublic,
	"/grpc.health.v1.Health/List":  SecurityPublic,
	"/grpc.health.v1.Health/Watch": SecurityPublic,

	// Server reflection - Access Protected
	"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo":      SecurityAccess,
	"/grpc.reflection.v1alpha.ServerReflection/ServerReflectionInfo": SecurityAccess,

	// Tabs - Access Protected
	"CreateTab":        SecurityAccess,
	"ListTabs":         SecurityAccess,
	"GetTab":           SecurityAccess,
	"CloseTab":         SecurityAccess,
	"AddParticipant":   SecurityAccess,
	"ClaimParticipant": SecurityAccess,

	// Expenses - Access Protected
	"ListExpenses":  SecurityAccess,
	"CreateExpense": SecurityAccess,
	"GetExpense":    SecurityAccess,
	"UpdateExpense": SecurityAccess,
	"DeleteExpense": SecurityAccess,

	// Settlement - Access Protected
	"GetSettlement":        SecurityAccess,
	"ListAcknowledgements": SecurityAccess,
	"MarkPaid":             SecurityAccess,
	"ConfirmReceived":      SecurityAccess,

	// Notifications - Access Protected
	"GetNotifications":     SecurityAccess,
	"MarkNotificationRead": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route or method name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown routes
	return SecurityAccess
}
