package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/botadmin/internal/client/api"
)

// Call issues a raw API request and prints the response.
//
//	get <path> [name=value ...]
//	delete <path>
//	post|put|patch <path> [json]
//
// When a body command is given no JSON on the line, it is read from the
// prompt.
func (a *App) Call(ctx context.Context, method string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s <path>", strings.ToLower(method))
	}
	path := args[0]
	req := &api.Request{Method: method, Path: path}

	switch method {
	case http.MethodGet:
		params, err := ParseParams(args[1:])
		if err != nil {
			return err
		}
		req.Params = params
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		body := strings.TrimSpace(strings.Join(args[1:], " "))
		if body == "" {
			text, err := GetMultiline(a.reader, "Enter JSON body", a.out)
			if err != nil {
				return err
			}
			body = text
		}
		if body == "" {
			body = "{}"
		}
		if !json.Valid([]byte(body)) {
			return errors.New("body is not valid JSON")
		}
		req.Body = json.RawMessage(body)
	}

	if a.isLoggedIn() && !a.guard.APIAllowed(path) {
		printWarn(a.out, "warning: "+path+" is not in the permitted API list")
	}

	var raw []byte
	if err := a.client.Do(ctx, req, &raw); err != nil {
		return err
	}
	printBody(a.out, raw)
	return nil
}
