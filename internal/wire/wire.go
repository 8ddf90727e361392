// ABOUTME: Request envelope shared by the gateway endpoint and remote resolvers
// ABOUTME: Defines the mk_token/get_token commands and the token response keys

package wire

// Commands a resolver can send to the gateway.
const (
	// CmdMkToken requests authentication and token creation.
	CmdMkToken = "mk_token"
	// CmdGetToken requests lookup of a previously issued token.
	CmdGetToken = "get_token"
)

// Request is the structured envelope for the remote path. Exactly one of
// Params (mk_token) or Token (get_token) is meaningful per command.
type Request struct {
	Cmd    string            `json:"cmd"`
	Eauth  string            `json:"eauth,omitempty"`
	Token  string            `json:"token,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// Response keys. A successful response carries all five; failures are an
// empty object so callers cannot distinguish causes.
const (
	KeyToken  = "token"
	KeyName   = "name"
	KeyEauth  = "eauth"
	KeyStart  = "start"
	KeyExpire = "expire"
)
