// Package docs registers the OpenAPI description of the ledger API with swag.
// Regenerate it from the handler annotations with:
//
//	swag init -g cmd/ledger_backend/main.go -o cmd/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/tenants/{tenant_id}/coa/seed": {
            "post": {
                "description": "Creates any system accounts the tenant is missing. Existing accounts are left untouched.",
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Seed the default chart of accounts",
                "parameters": [
                    {"$ref": "#/parameters/tenantID"},
                    {"$ref": "#/parameters/actorID"}
                ],
                "responses": {
                    "200": {"description": "Chart already complete", "schema": {"$ref": "#/definitions/dto.SeedResponse"}},
                    "201": {"description": "Accounts were created", "schema": {"$ref": "#/definitions/dto.SeedResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tenants/{tenant_id}/accounts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "List the chart of accounts",
                "parameters": [{"$ref": "#/parameters/tenantID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListAccountsResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Create a new account",
                "parameters": [
                    {"$ref": "#/parameters/tenantID"},
                    {"$ref": "#/parameters/actorID"},
                    {"description": "Account details", "name": "account", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateAccountRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.AccountResponse"}},
                    "400": {"description": "Invalid input or parent", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Account code already exists", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tenants/{tenant_id}/accounts/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get an account by ID",
                "parameters": [{"$ref": "#/parameters/tenantID"}, {"$ref": "#/parameters/resourceID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AccountResponse"}},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Rename an account",
                "parameters": [
                    {"$ref": "#/parameters/tenantID"},
                    {"$ref": "#/parameters/actorID"},
                    {"$ref": "#/parameters/resourceID"},
                    {"description": "New name", "name": "account", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RenameAccountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AccountResponse"}},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "System accounts cannot be renamed", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tenants/{tenant_id}/accounts/{id}/deactivate": {
            "post": {
                "tags": ["accounts"],
                "summary": "Deactivate an account",
                "parameters": [{"$ref": "#/parameters/tenantID"}, {"$ref": "#/parameters/actorID"}, {"$ref": "#/parameters/resourceID"}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "System accounts cannot be deactivated", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tenants/{tenant_id}/accounts/{id}/ledger": {
            "get": {
                "produces": ["application/json"],
                "tags": ["entries"],
                "summary": "Get an account ledger",
                "parameters": [
                    {"$ref": "#/parameters/tenantID"},
                    {"$ref": "#/parameters/resourceID"},
                    {"type": "string", "description": "First date, YYYY-MM-DD", "name": "from", "in": "query"},
                    {"type": "string", "description": "Last date, YYYY-MM-DD", "name": "to", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AccountLedgerResponse"}},
                    "400": {"description": "Invalid date range", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tenants/{tenant_id}/entries": {
            "post": {
                "description": "Posts the entry once per source event. A repeated source event returns the original with 200.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["entries"],
                "summary": "Post a journal entry or save a draft",
                "parameters": [
                    {"$ref": "#/parameters/tenantID"},
                    {"$ref": "#/parameters/actorID"},
                    {"description": "Entry with at least two lines", "name": "entry", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateEntryRequest"}}
                ],
                "responses": {
                    "200": {"description": "Source event already posted", "schema": {"$ref": "#/definitions/dto.EntryResponse"}},
                    "201": {"description": "Posted or draft saved", "schema": {"$ref": "#/definitions/dto.EntryResponse"}},
                    "400": {"description": "Unbalanced entry or invalid line", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tenants/{tenant_id}/entries/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["entries"],
                "summary": "Get a journal entry",
                "parameters": [{"$ref": "#/parameters/tenantID"}, {"$ref": "#/parameters/resourceID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.EntryResponse"}},
                    "404": {"description": "Entry not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tenants/{tenant_id}/entries/{id}/post": {
            "post": {
                "produces": ["application/json"],
                "tags": ["entries"],
                "summary": "Post a draft entry",
                "parameters": [{"$ref": "#/parameters/tenantID"}, {"$ref": "#/parameters/actorID"}, {"$ref": "#/parameters/resourceID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.EntryResponse"}},
                    "400": {"description": "Draft does not balance", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Entry not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Invalid transition or source event held by another entry", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tenants/{tenant_id}/entries/{id}/reverse": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["entries"],
                "summary": "Reverse a posted entry",
                "parameters": [
                    {"$ref": "#/parameters/tenantID"},
                    {"$ref": "#/parameters/actorID"},
                    {"$ref": "#/parameters/resourceID"},
                    {"description": "Reason for the reversal", "name": "reversal", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ReverseEntryRequest"}}
                ],
                "responses": {
                    "201": {"description": "The reversing entry", "schema": {"$ref": "#/definitions/dto.EntryResponse"}},
                    "404": {"description": "Entry not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Already reversed or not posted", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tenants/{tenant_id}/events": {
            "post": {
                "description": "Accepts one event or a JSON array of events. Each event posts at most once per tenant.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Ingest business events",
                "parameters": [
                    {"$ref": "#/parameters/tenantID"},
                    {"$ref": "#/parameters/actorID"},
                    {"description": "An event envelope or an array of them", "name": "events", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Replayed, skipped or batch results", "schema": {"$ref": "#/definitions/dto.BatchEventsResponse"}},
                    "201": {"description": "Entry posted", "schema": {"$ref": "#/definitions/dto.EventResultResponse"}},
                    "400": {"description": "Malformed event", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "429": {"description": "Rate limit exceeded", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tenants/{tenant_id}/events/preview": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Preview the entry an event would post",
                "parameters": [
                    {"$ref": "#/parameters/tenantID"},
                    {"description": "Event envelope", "name": "event", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PreviewResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tenants/{tenant_id}/documents/audit": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Audit a document against its posted entries",
                "parameters": [
                    {"$ref": "#/parameters/tenantID"},
                    {"description": "Exactly one document", "name": "document", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AuditDocumentResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tenants/{tenant_id}/reports/trial-balance": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Get the trial balance",
                "parameters": [
                    {"$ref": "#/parameters/tenantID"},
                    {"type": "string", "description": "Report date, YYYY-MM-DD. Defaults to today", "name": "asOf", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TrialBalanceResponse"}},
                    "400": {"description": "Invalid date", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/tenants/{tenant_id}/reports/balance-check": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Compare stored balances with a replay",
                "parameters": [{"$ref": "#/parameters/tenantID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BalanceCheckResponse"}}
                }
            }
        },
        "/tenants/{tenant_id}/reports/balance-replay": {
            "post": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Rebuild stored balances from posted lines",
                "parameters": [{"$ref": "#/parameters/tenantID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.BalanceReplayResponse"}}
                }
            }
        }
    },
    "parameters": {
        "tenantID": {"type": "string", "description": "Tenant ID", "name": "tenant_id", "in": "path", "required": true},
        "resourceID": {"type": "string", "description": "Account or entry ID", "name": "id", "in": "path", "required": true},
        "actorID": {"type": "string", "description": "Acting user, defaults to system", "name": "X-Actor-ID", "in": "header"}
    },
    "definitions": {
        "dto.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "string"}, "resource": {"type": "string"}}},
        "dto.CreateAccountRequest": {"type": "object", "required": ["code", "name", "accountType"], "properties": {"code": {"type": "string"}, "name": {"type": "string"}, "accountType": {"type": "string", "enum": ["ASSET", "LIABILITY", "EQUITY", "REVENUE", "EXPENSE"]}, "subtype": {"type": "string"}, "parentAccountID": {"type": "string"}}},
        "dto.RenameAccountRequest": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}},
        "dto.AccountResponse": {"type": "object"},
        "dto.ListAccountsResponse": {"type": "object", "properties": {"accounts": {"type": "array", "items": {"type": "object"}}}},
        "dto.SeedResponse": {"type": "object", "properties": {"created": {"type": "array", "items": {"$ref": "#/definitions/dto.AccountResponse"}}}},
        "dto.CreateEntryRequest": {"type": "object"},
        "dto.ReverseEntryRequest": {"type": "object", "required": ["reason"], "properties": {"reason": {"type": "string"}}},
        "dto.EntryResponse": {"type": "object"},
        "dto.AccountLedgerResponse": {"type": "object"},
        "dto.EventResultResponse": {"type": "object"},
        "dto.BatchEventsResponse": {"type": "object", "properties": {"results": {"type": "array", "items": {"$ref": "#/definitions/dto.EventResultResponse"}}, "failed": {"type": "integer"}}},
        "dto.PreviewResponse": {"type": "object"},
        "dto.AuditDocumentResponse": {"type": "object"},
        "dto.TrialBalanceResponse": {"type": "object"},
        "dto.BalanceCheckResponse": {"type": "object"},
        "dto.BalanceReplayResponse": {"type": "object", "properties": {"accounts": {"type": "integer"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Tenant Ledger API",
	Description:      "Multi-tenant double-entry ledger: chart of accounts, journal entries, event ingestion and reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
