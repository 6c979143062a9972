package property

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/evert/apps-script-mcp-go/internal/middleware"
	"github.com/evert/apps-script-mcp-go/internal/pkg/crypto"
	"github.com/evert/apps-script-mcp-go/internal/pkg/response"
	"github.com/evert/apps-script-mcp-go/internal/pkg/validate"
	"github.com/evert/apps-script-mcp-go/internal/properties"
	"github.com/evert/apps-script-mcp-go/internal/tools"
)

// propErr maps property-layer failures onto agent-actionable messages.
func propErr(err error) error {
	var cryptoErr *crypto.CryptoError
	if errors.As(err, &cryptoErr) {
		return fmt.Errorf("%v — check that GAS_ENCRYPTION_KEY matches the key the value was encrypted with", err)
	}
	var integrityErr *properties.IntegrityError
	if errors.As(err, &integrityErr) {
		return fmt.Errorf("%v — the backup file is corrupt or was edited; nothing was restored", err)
	}
	if errors.Is(err, properties.ErrKeyMismatch) {
		return err
	}
	return middleware.HandleGoogleAPIError(err)
}

// --- get_property ---

type GetPropertyInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	Key      string `json:"key" jsonschema:"required" jsonschema_description:"Property key to read"`
}

type GetPropertyOutput struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Encrypted bool   `json:"encrypted"`
}

func createGetPropertyHandler(deps *tools.Deps) mcp.ToolHandlerFor[GetPropertyInput, GetPropertyOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetPropertyInput) (*mcp.CallToolResult, GetPropertyOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, GetPropertyOutput{}, err
		}
		if err := validate.PropertyKey(input.Key); err != nil {
			return nil, GetPropertyOutput{}, err
		}

		deps.Properties.SweepOnce(ctx, input.ScriptID)

		v, found, err := deps.Properties.Get(ctx, input.ScriptID, input.Key, true)
		if err != nil {
			return nil, GetPropertyOutput{}, propErr(err)
		}
		if !found {
			return nil, GetPropertyOutput{}, fmt.Errorf("property %q not found — use list_properties to see what is set", input.Key)
		}

		rb := response.New()
		rb.Header("Property")
		rb.KeyValue("Key", input.Key)
		rb.KeyValue("Value", v.Value)
		rb.KeyValue("Stored encrypted", v.Encrypted)

		out := GetPropertyOutput{Key: input.Key, Value: v.Value, Encrypted: v.Encrypted}
		return rb.TextResult(), out, nil
	}
}

// --- set_property ---

type SetPropertyInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	Key      string `json:"key" jsonschema:"required" jsonschema_description:"Property key to write"`
	Value    string `json:"value" jsonschema:"required" jsonschema_description:"Value to store"`
	Encrypt  bool   `json:"encrypt,omitempty" jsonschema_description:"Encrypt the value at rest with the server's encryption key"`
}

func createSetPropertyHandler(deps *tools.Deps) mcp.ToolHandlerFor[SetPropertyInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SetPropertyInput) (*mcp.CallToolResult, any, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, nil, err
		}
		if err := validate.PropertyKey(input.Key); err != nil {
			return nil, nil, err
		}

		deps.Properties.SweepOnce(ctx, input.ScriptID)

		if err := deps.Properties.Set(ctx, input.ScriptID, input.Key, input.Value, input.Encrypt); err != nil {
			return nil, nil, propErr(err)
		}

		rb := response.New()
		rb.Header("Property Set")
		rb.KeyValue("Key", input.Key)
		if input.Encrypt {
			rb.KeyValue("Value", crypto.MaskSecret(input.Value))
			rb.KeyValue("Encrypted", true)
		} else {
			rb.KeyValue("Value", input.Value)
		}

		return rb.TextResult(), nil, nil
	}
}

// --- delete_property ---

type DeletePropertyInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	Key      string `json:"key" jsonschema:"required" jsonschema_description:"Property key to delete"`
}

type DeletePropertyOutput struct {
	Existed bool `json:"existed"`
}

func createDeletePropertyHandler(deps *tools.Deps) mcp.ToolHandlerFor[DeletePropertyInput, DeletePropertyOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DeletePropertyInput) (*mcp.CallToolResult, DeletePropertyOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, DeletePropertyOutput{}, err
		}
		if err := validate.PropertyKey(input.Key); err != nil {
			return nil, DeletePropertyOutput{}, err
		}

		deps.Properties.SweepOnce(ctx, input.ScriptID)

		existed, err := deps.Properties.Delete(ctx, input.ScriptID, input.Key)
		if err != nil {
			return nil, DeletePropertyOutput{}, propErr(err)
		}

		rb := response.New()
		if existed {
			rb.Header("Property Deleted")
			rb.KeyValue("Key", input.Key)
		} else {
			rb.Line("Property %q was not set — nothing to delete.", input.Key)
		}

		return rb.TextResult(), DeletePropertyOutput{Existed: existed}, nil
	}
}

// --- list_properties ---

type ListPropertiesInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	Decrypt  bool   `json:"decrypt,omitempty" jsonschema_description:"Decrypt encrypted values instead of masking them"`
}

type PropertyInfo struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Encrypted bool   `json:"encrypted"`
}

type ListPropertiesOutput struct {
	Properties []PropertyInfo `json:"properties"`
}

func createListPropertiesHandler(deps *tools.Deps) mcp.ToolHandlerFor[ListPropertiesInput, ListPropertiesOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListPropertiesInput) (*mcp.CallToolResult, ListPropertiesOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, ListPropertiesOutput{}, err
		}

		deps.Properties.SweepOnce(ctx, input.ScriptID)

		values, err := deps.Properties.GetAll(ctx, input.ScriptID, input.Decrypt)
		if err != nil {
			return nil, ListPropertiesOutput{}, propErr(err)
		}

		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		rb := response.New()
		rb.Header("Script Properties")
		rb.KeyValue("Count", len(values))
		rb.Blank()

		out := ListPropertiesOutput{}
		for _, k := range keys {
			v := values[k]
			display := v.Value
			if v.Encrypted && !input.Decrypt {
				display = "(encrypted)"
			}
			out.Properties = append(out.Properties, PropertyInfo{Key: k, Value: display, Encrypted: v.Encrypted})
			rb.Item("%s = %s", k, display)
		}

		return rb.TextResult(), out, nil
	}
}

// --- audit_properties ---

type AuditPropertiesInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
}

type AuditPropertiesOutput struct {
	Total     int                  `json:"total"`
	Encrypted int                  `json:"encrypted"`
	Plaintext int                  `json:"plaintext"`
	Findings  []properties.Finding `json:"findings"`
}

func createAuditPropertiesHandler(deps *tools.Deps) mcp.ToolHandlerFor[AuditPropertiesInput, AuditPropertiesOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AuditPropertiesInput) (*mcp.CallToolResult, AuditPropertiesOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, AuditPropertiesOutput{}, err
		}

		deps.Properties.SweepOnce(ctx, input.ScriptID)

		report, err := deps.Properties.Audit(ctx, input.ScriptID)
		if err != nil {
			return nil, AuditPropertiesOutput{}, propErr(err)
		}

		rb := response.New()
		rb.Header("Property Security Audit")
		rb.KeyValue("Total properties", report.Total)
		rb.KeyValue("Encrypted", report.Encrypted)
		rb.KeyValue("Plaintext", report.Plaintext)
		rb.Blank()

		if len(report.Findings) == 0 {
			rb.Line("No plaintext properties with sensitive-looking keys.")
		} else {
			rb.Line("Sensitive-looking keys stored in plaintext:")
			for _, f := range report.Findings {
				rb.Item("%s (matched %q) — consider set_property with encrypt=true", f.Key, f.Keyword)
			}
		}

		out := AuditPropertiesOutput{
			Total:     report.Total,
			Encrypted: report.Encrypted,
			Plaintext: report.Plaintext,
			Findings:  report.Findings,
		}
		return rb.TextResult(), out, nil
	}
}

// --- backup_properties ---

type BackupPropertiesInput struct {
	ScriptID string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
}

func createBackupPropertiesHandler(deps *tools.Deps) mcp.ToolHandlerFor[BackupPropertiesInput, *properties.Snapshot] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input BackupPropertiesInput) (*mcp.CallToolResult, *properties.Snapshot, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, nil, err
		}

		deps.Properties.SweepOnce(ctx, input.ScriptID)

		snap, err := deps.Properties.Backup(ctx, input.ScriptID)
		if err != nil {
			return nil, nil, propErr(err)
		}

		encoded, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, nil, fmt.Errorf("encoding snapshot: %w", err)
		}

		rb := response.New()
		rb.Header("Properties Backup")
		rb.KeyValue("Properties", snap.Count)
		rb.KeyValue("Contains encrypted values", snap.HasEncrypted)
		rb.KeyValue("Checksum", snap.Checksum)
		rb.Blank()
		rb.Line("Save this snapshot and pass it back to restore_properties:")
		rb.Code(string(encoded))

		return rb.TextResult(), snap, nil
	}
}

// --- restore_properties ---

type RestorePropertiesInput struct {
	ScriptID         string `json:"script_id" jsonschema:"required" jsonschema_description:"The Apps Script project ID"`
	Snapshot         string `json:"snapshot" jsonschema:"required" jsonschema_description:"JSON snapshot produced by backup_properties"`
	SkipVerify       bool   `json:"skip_verify,omitempty" jsonschema_description:"Skip the checksum integrity check"`
	AllowKeyMismatch bool   `json:"allow_key_mismatch,omitempty" jsonschema_description:"Restore encrypted envelopes verbatim even if the snapshot was taken under a different encryption key"`
}

type RestorePropertiesOutput struct {
	Restored int `json:"restored"`
}

func createRestorePropertiesHandler(deps *tools.Deps) mcp.ToolHandlerFor[RestorePropertiesInput, RestorePropertiesOutput] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RestorePropertiesInput) (*mcp.CallToolResult, RestorePropertiesOutput, error) {
		if err := validate.ScriptID(input.ScriptID); err != nil {
			return nil, RestorePropertiesOutput{}, err
		}

		var snap properties.Snapshot
		if err := json.Unmarshal([]byte(input.Snapshot), &snap); err != nil {
			return nil, RestorePropertiesOutput{}, fmt.Errorf("snapshot is not valid JSON: %w", err)
		}

		opts := properties.RestoreOptions{
			SkipVerify:       input.SkipVerify,
			AllowKeyMismatch: input.AllowKeyMismatch,
		}

		deps.Properties.SweepOnce(ctx, input.ScriptID)

		written, err := deps.Properties.Restore(ctx, input.ScriptID, &snap, opts)
		if err != nil {
			return nil, RestorePropertiesOutput{}, propErr(err)
		}

		rb := response.New()
		rb.Header("Properties Restored")
		rb.KeyValue("Restored", written)
		if !snap.Timestamp.IsZero() {
			rb.KeyValue("Snapshot taken", snap.Timestamp.Format(time.RFC3339))
		}

		return rb.TextResult(), RestorePropertiesOutput{Restored: written}, nil
	}
}
