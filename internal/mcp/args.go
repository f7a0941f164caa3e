package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tyrchen/codebank-sub000/internal/bank/render"
)

// GenerateRequest holds the arguments of the generate and generate_file tools.
type GenerateRequest struct {
	Path               string   `json:"path"`
	Strategy           string   `json:"strategy,omitempty"`
	Output             string   `json:"output,omitempty"`
	Ignore             []string `json:"ignore,omitempty"`
	IncludePackageFile *bool    `json:"include_package_file,omitempty"`
}

// errInvalidArgument marks problems the caller can fix; they become tool error results.
var errInvalidArgument = errors.New("invalid argument")

// argumentGetter is satisfied by mcp.CallToolRequest.
type argumentGetter interface {
	GetArguments() map[string]any
}

// bindArguments decodes the request arguments into target. Clients sometimes
// send every value as a string, so JSON-encoded arrays and booleans are
// decoded before binding.
func bindArguments[T any](request argumentGetter, target *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(request.GetArguments()); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgument, err)
	}
	return nil
}

func jsonStringHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return data, nil
	}

	switch to.Kind() {
	case reflect.Slice:
		if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
			slicePtr := reflect.New(to)
			if err := json.Unmarshal([]byte(raw), slicePtr.Interface()); err == nil {
				return slicePtr.Elem().Interface(), nil
			}
		}
	case reflect.Bool:
		if raw == "true" || raw == "false" {
			return raw == "true", nil
		}
	}
	return data, nil
}

// parseGenerateRequest binds and validates the common tool arguments.
// requireOutput is set for generate_file.
func parseGenerateRequest(request mcp.CallToolRequest, requireOutput bool) (*GenerateRequest, render.Strategy, error) {
	if _, ok := request.GetRawArguments().(map[string]any); !ok {
		return nil, render.Default, fmt.Errorf("%w: invalid arguments format", errInvalidArgument)
	}

	var req GenerateRequest
	if err := bindArguments(request, &req); err != nil {
		return nil, render.Default, err
	}

	req.Path = strings.TrimSpace(req.Path)
	if req.Path == "" {
		return nil, render.Default, fmt.Errorf("%w: path parameter is required", errInvalidArgument)
	}
	req.Output = strings.TrimSpace(req.Output)
	if requireOutput && req.Output == "" {
		return nil, render.Default, fmt.Errorf("%w: output parameter is required", errInvalidArgument)
	}

	strategy, err := render.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, render.Default, fmt.Errorf("%w: %v", errInvalidArgument, err)
	}
	return &req, strategy, nil
}
