// Package mcpserver exposes the fireplace operations as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"fireplace_cli/internal/display"
	"fireplace_cli/internal/logger"
	"fireplace_cli/internal/models"
	"fireplace_cli/internal/service"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool names.
const (
	ToolTurnOn         = "fireplace_turn_on"
	ToolTurnOff        = "fireplace_turn_off"
	ToolStatus         = "fireplace_status"
	ToolSetMode        = "fireplace_set_mode"
	ToolSetTemperature = "fireplace_set_temperature"
)

var (
	emptySchema = json.RawMessage(`{"type":"object","properties":{}}`)

	modeSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "mode": {"type": "string", "enum": ["manual", "eco", "temperature", "off"], "description": "Operation mode"}
  },
  "required": ["mode"]
}`)

	temperatureSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "temperature": {"type": "number", "description": "Target temperature, 5-36 °C or 41-97 °F"},
    "unit": {"type": "string", "enum": ["C", "F"], "description": "Unit of temperature; defaults to the configured display unit"}
  },
  "required": ["temperature"]
}`)
)

// Server serves the fireplace tools over MCP.
type Server struct {
	server    *mcp.Server
	fireplace service.Fireplace
	unit      display.Unit
	log       *logger.Logger
}

// New builds a server driving fireplace. unit is used for temperatures in replies
// and for set-temperature calls that do not name a unit.
func New(fireplace service.Fireplace, unit display.Unit, version string, log *logger.Logger) *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "fireplace",
			Version: version,
		}, nil),
		fireplace: fireplace,
		unit:      unit,
		log:       logger.OrNop(log),
	}
	s.register()
	return s
}

func (s *Server) register() {
	s.addTool(ToolTurnOn, "Turn the fireplace on. Ignition takes about a minute; if the result says pending, call again to finish.", emptySchema,
		func(ctx context.Context, _ json.RawMessage) (service.Report, error) {
			return s.fireplace.TurnOn(ctx)
		})
	s.addTool(ToolTurnOff, "Turn the fireplace off by extinguishing the guard flame.", emptySchema,
		func(ctx context.Context, _ json.RawMessage) (service.Report, error) {
			return s.fireplace.TurnOff(ctx)
		})
	s.addTool(ToolStatus, "Read the current fireplace status.", emptySchema,
		func(ctx context.Context, _ json.RawMessage) (service.Report, error) {
			return s.fireplace.Status(ctx)
		})
	s.addTool(ToolSetMode, "Set the operation mode: manual, eco, temperature or off.", modeSchema, s.setMode)
	s.addTool(ToolSetTemperature, "Set the target temperature, switching to temperature mode if needed.", temperatureSchema, s.setTemperature)
}

type toolFunc func(ctx context.Context, args json.RawMessage) (service.Report, error)

func (s *Server) addTool(name, description string, schema json.RawMessage, fn toolFunc) {
	s.server.AddTool(&mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if args == nil {
			args = json.RawMessage("{}")
		}
		rep, err := fn(ctx, args)
		if err != nil {
			s.log.Warnw("mcp_tool_failed", "tool", name, "err", err)
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
				IsError: true,
			}, nil
		}
		text, err := s.describe(rep)
		if err != nil {
			return nil, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil
	})
}

func (s *Server) setMode(ctx context.Context, raw json.RawMessage) (service.Report, error) {
	var args struct {
		Mode string `json:"mode"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return service.Report{}, fmt.Errorf("invalid arguments: %w", err)
	}
	mode, err := models.ParseOperationMode(args.Mode)
	if err != nil {
		return service.Report{}, err
	}
	return s.fireplace.SetMode(ctx, mode)
}

func (s *Server) setTemperature(ctx context.Context, raw json.RawMessage) (service.Report, error) {
	var args struct {
		Temperature *float64 `json:"temperature"`
		Unit        string   `json:"unit"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return service.Report{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Temperature == nil {
		return service.Report{}, fmt.Errorf("invalid arguments: temperature is required")
	}
	unit := s.unit
	if args.Unit != "" {
		u, ok := display.ParseUnit(args.Unit)
		if !ok {
			return service.Report{}, fmt.Errorf("invalid unit %q: use C or F", args.Unit)
		}
		unit = u
	}
	celsius, err := display.ValidateAndConvert(*args.Temperature, unit)
	if err != nil {
		return service.Report{}, err
	}
	return s.fireplace.SetTemperature(ctx, celsius)
}

// describe renders a one-line outcome followed by the report as JSON.
func (s *Server) describe(rep service.Report) (string, error) {
	outcome := "done"
	switch {
	case rep.Operation == service.OpStatus && !rep.Completed:
		outcome = "no reply from the fireplace"
	case !rep.Completed:
		outcome = "pending ignition; call again to finish"
	}
	body, err := json.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return fmt.Sprintf("%s: %s (%s)\n%s", rep.Operation, outcome, display.Summary(rep.Status, s.unit), body), nil
}

// Serve runs the server over in/out until ctx is canceled or the peer closes
// the stream.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return s.run(ctx, &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	})
}

func (s *Server) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
