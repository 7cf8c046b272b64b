package splunk

// Entry is one entity of a Splunk REST feed (output_mode=json).
type Entry struct {
	Name    string         `json:"name"`
	ID      string         `json:"id"`
	Author  string         `json:"author"`
	ACL     ACL            `json:"acl"`
	Links   Links          `json:"links"`
	Content map[string]any `json:"content"`
}

// ACL is the access control block of an entry.
type ACL struct {
	App      string `json:"app"`
	Owner    string `json:"owner"`
	Sharing  string `json:"sharing"`
	CanWrite bool   `json:"can_write"`
}

// Links holds the entity endpoints, as absolute escaped paths.
type Links struct {
	Alternate string `json:"alternate"`
	List      string `json:"list"`
	Edit      string `json:"edit"`
}

// Message is a service message attached to a response.
type Message struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type feed struct {
	Entry    []Entry   `json:"entry"`
	Messages []Message `json:"messages"`
}

type loginResponse struct {
	SessionKey string    `json:"sessionKey"`
	Messages   []Message `json:"messages"`
}
