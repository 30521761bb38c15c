package middleware

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/konstanta-tech/tracker/internal/services"
)

const maxAuditBody = 2000

// ActivityRecorder stores audited requests.
type ActivityRecorder interface {
	Record(entry services.ActivityEntry)
}

// AuditLog records every write request (POST, PUT, PATCH, DELETE) with its
// caller, outcome and a masked copy of the body.
func AuditLog(recorder ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != "POST" && method != "PUT" && method != "PATCH" && method != "DELETE" {
			c.Next()
			return
		}

		var bodySnippet string
		if c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			bodySnippet = maskSensitiveFields(string(bodyBytes))
			bodySnippet = truncateBody(bodySnippet, maxAuditBody)
		}

		c.Next()

		var uid *uint
		if userID := GetUserID(c); userID > 0 {
			uid = &userID
		}
		module, action := parseRouteInfo(c.FullPath(), method)

		extra := map[string]interface{}{}
		if bodySnippet != "" {
			extra["body"] = bodySnippet
		}
		if len(c.Errors) > 0 {
			extra["errors"] = c.Errors.String()
		}

		recorder.Record(services.ActivityEntry{
			UserID: uid,
			Method: method,
			Path:   c.Request.URL.Path,
			Module: module,
			Action: action,
			Status: c.Writer.Status(),
			IP:     c.ClientIP(),
			Extra:  extra,
		})
	}
}

// parseRouteInfo derives module and action from a route pattern,
// e.g. "/tasks/:id/move" + "POST" gives module "tasks", action "move".
func parseRouteInfo(fullPath, method string) (module, action string) {
	parts := strings.Split(strings.Trim(fullPath, "/"), "/")
	module = parts[0]
	if module == "" {
		module = "unknown"
	}

	last := parts[len(parts)-1]
	if len(parts) > 1 && !strings.HasPrefix(last, ":") {
		return module, last
	}

	switch method {
	case "POST":
		action = "create"
	case "PUT", "PATCH":
		action = "update"
	case "DELETE":
		action = "delete"
	default:
		action = strings.ToLower(method)
	}
	return module, action
}

var sensitiveKeys = []string{"password", "token", "accesstoken", "secret", "content"}

// maskSensitiveFields blanks string values of credential keys and inline
// attachment payloads in a JSON body.
func maskSensitiveFields(body string) string {
	for _, key := range sensitiveKeys {
		body = maskJSONValue(body, key)
	}
	return body
}

// maskJSONValue does a best-effort mask of every "key": "value" pair,
// matching the key case-insensitively.
func maskJSONValue(body, key string) string {
	needle := "\"" + key + "\""
	from := 0
	for {
		rel := indexFoldASCII(body[from:], needle)
		if rel == -1 {
			return body
		}
		idx := from + rel + len(needle)

		colon := strings.Index(body[idx:], ":")
		if colon == -1 {
			return body
		}
		valueStart := idx + colon + 1
		for valueStart < len(body) && (body[valueStart] == ' ' || body[valueStart] == '\t') {
			valueStart++
		}
		if valueStart >= len(body) || body[valueStart] != '"' {
			from = idx
			continue
		}

		endQuote := closingQuote(body, valueStart+1)
		if endQuote == -1 {
			return body
		}
		body = body[:valueStart+1] + "***" + body[endQuote:]
		from = valueStart + 5
	}
}

// indexFoldASCII finds needle in s ignoring ASCII case. Offsets are byte
// offsets into s; non-ASCII bytes only match themselves.
func indexFoldASCII(s, needle string) int {
	for i := 0; i+len(needle) <= len(s); i++ {
		match := true
		for j := 0; j < len(needle); j++ {
			if lowerASCII(s[i+j]) != lowerASCII(needle[j]) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func lowerASCII(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// truncateBody cuts s to at most n bytes without splitting a rune.
func truncateBody(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "...[truncated]"
}

// closingQuote returns the index of the quote ending the string that starts at i.
func closingQuote(s string, i int) int {
	for ; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
