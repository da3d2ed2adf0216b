// Package docs contains the generated OpenAPI definition served by the
// swagger UI route. Regenerate with `swag init -g cmd/api/main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/1.0/answering_gpt/": {
            "post": {
                "description": "Runs the full answering pipeline: FAQ match, document retrieval, LLM query and channel delivery",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Answering"],
                "summary": "Answer a user question",
                "parameters": [
                    {
                        "description": "Question payload",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/services.AnswerRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.AnswerResponse"}},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"},
                    "500": {"description": "Internal Server Error"}
                }
            }
        },
        "/api/1.0/business_unit/create/": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["BusinessUnits"],
                "summary": "Create a business unit",
                "parameters": [
                    {
                        "description": "Business unit",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.BusinessUnit"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.BusinessUnit"}},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/api/1.0/business_unit/update/{id}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["BusinessUnits"],
                "summary": "Update a business unit",
                "parameters": [
                    {"type": "string", "description": "Business unit ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Tenant apikey", "name": "apikey", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.BusinessUnit"}},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "tags": ["BusinessUnits"],
                "summary": "Delete a business unit",
                "parameters": [
                    {"type": "string", "description": "Business unit ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Tenant apikey", "name": "apikey", "in": "query", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/api/1.0/business_unit/suspend/{id}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["BusinessUnits"],
                "summary": "Suspend or resume a business unit",
                "parameters": [
                    {"type": "string", "description": "Business unit ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Tenant apikey", "name": "apikey", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/api/1.0/document/create/": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Register a knowledge document",
                "parameters": [
                    {
                        "description": "Document",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.Document"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Document"}},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/api/1.0/document/update/{id}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Documents"],
                "summary": "Update a document",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Document"}},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "tags": ["Documents"],
                "summary": "Delete a document",
                "parameters": [
                    {"type": "string", "description": "Document ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "models.BusinessUnit": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "apikey": {"type": "string"},
                "name": {"type": "string"},
                "gpt_api_key": {"type": "string"},
                "documents_list": {"type": "string"},
                "sendpulse_secret": {"type": "string"},
                "sendpulse_id": {"type": "string"},
                "google_creds": {"type": "string"},
                "default_text": {"type": "string"},
                "panic_text": {"type": "string"},
                "temperature": {"type": "number"},
                "max_tokens": {"type": "integer"},
                "chunk_size": {"type": "integer"},
                "chunk_overlap": {"type": "integer"},
                "similarity_top_k": {"type": "integer"},
                "bot_mode": {"type": "integer"},
                "gpt_model": {"type": "string"},
                "eval_prompt": {"type": "string"},
                "system_prompt": {"type": "string"},
                "eval_score": {"type": "number"},
                "sending_service": {"type": "integer"},
                "script_mode": {"type": "integer"},
                "gpt_assistant_id": {"type": "string"},
                "is_active": {"type": "boolean"},
                "similarity_simple_q": {"type": "number"},
                "is_trial_user_limits": {"type": "boolean"},
                "requests_count_limit": {"type": "integer"},
                "file_size_limit": {"type": "integer"},
                "token_used": {"type": "integer"},
                "usage_limit_message": {"type": "string"}
            }
        },
        "models.Document": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "document_id": {"type": "string"},
                "file": {"type": "string"},
                "business_unit": {"type": "string"}
            }
        },
        "services.AnswerRequest": {
            "type": "object",
            "properties": {
                "query_text": {"type": "string"},
                "apikey": {"type": "string"},
                "contact_id": {"type": "string"},
                "source_type": {"type": "string"},
                "document_id": {"type": "string"},
                "username": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "services.AnswerResponse": {
            "type": "object",
            "properties": {
                "user_question": {"type": "string"},
                "response": {"type": "string"},
                "chunks": {"type": "string"},
                "sendpulse_cont": {"type": "array", "items": {"type": "string"}},
                "smart_sender": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Eddy School API",
	Description:      "Multi-tenant chatbot backend: document-grounded answering over Google Docs and uploaded files, delivered through SendPulse or SmartSender",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
