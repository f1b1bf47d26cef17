package security

// In-memory terminal registry (replace with DB/config later)
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"pos.scan","pos.checkout"}
	Enabled bool
}

var Clients = map[string]Client{
	"kasir-terminal-1": {ID: "kasir-terminal-1", Secret: "terminal-1-secret", Perms: []string{"pos.scan", "pos.checkout"}, Enabled: true},
	"kasir-terminal-2": {ID: "kasir-terminal-2", Secret: "terminal-2-secret", Perms: []string{"pos.scan", "pos.checkout"}, Enabled: true},
	"svc-dashboard":    {ID: "svc-dashboard", Secret: "dashboard-secret", Perms: []string{"pos.scan"}, Enabled: true},
}
