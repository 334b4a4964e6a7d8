// Package docs registers the OpenAPI document served at /swagger/*. It mirrors
// the swag annotations in cmd/server and internal/api/handler; regenerate with
// `swag init -g cmd/server/main.go` after changing them.
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
        "/messages/between/{a}/{b}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Conversation history",
                "parameters": [
                    {"type": "string", "description": "First user id", "name": "a", "in": "path", "required": true},
                    {"type": "string", "description": "Second user id", "name": "b", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Message"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/messages/conversation": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Conversation history (query form)",
                "parameters": [
                    {"type": "string", "description": "First user id", "name": "user1", "in": "query", "required": true},
                    {"type": "string", "description": "Second user id", "name": "user2", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Message"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/messages/markRead": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Mark a conversation read",
                "parameters": [
                    {"description": "Sender and recipient", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.markReadRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.markReadResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/messages/read": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Mark a conversation read",
                "parameters": [
                    {"description": "Sender and recipient", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.markReadRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.markReadResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/messages/shopkeeper/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Conversation summaries",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.ConversationSummary"}}}
                }
            }
        },
        "/messages/summaries/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Conversation summaries",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.ConversationSummary"}}}
                }
            }
        },
        "/messages/unread/{userId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["messages"],
                "summary": "Unread counts by sender",
                "parameters": [
                    {"type": "string", "description": "Recipient id", "name": "userId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer", "format": "int64"}}}
                }
            }
        },
        "/presence": {
            "get": {
                "produces": ["application/json"],
                "tags": ["presence"],
                "summary": "Online users",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.presenceResponse"}}
                }
            }
        },
        "/users/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Login (upsert user)",
                "parameters": [
                    {"description": "Login details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.loginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/users/type/{role}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "List users by role",
                "parameters": [
                    {"type": "string", "description": "student, students or shopkeeper", "name": "role", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.User"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get user by id",
                "parameters": [
                    {"type": "string", "description": "User id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.User"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.ConversationSummary": {
            "type": "object",
            "properties": {
                "lastMessage": {"$ref": "#/definitions/domain.Message"},
                "unreadCount": {"type": "integer"},
                "userId": {"type": "string"}
            }
        },
        "domain.Message": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "read": {"type": "boolean"},
                "recipient": {"type": "string"},
                "sender": {"type": "string"},
                "seq": {"type": "integer"},
                "text": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "email": {"type": "string"},
                "lastSeen": {"type": "string"},
                "name": {"type": "string"},
                "userId": {"type": "string"},
                "userType": {"type": "string", "enum": ["student", "shopkeeper"]}
            }
        },
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["userId"],
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string"},
                "userId": {"type": "string"},
                "userType": {"type": "string", "enum": ["student", "shopkeeper"]}
            }
        },
        "handler.loginResponse": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "email": {"type": "string"},
                "lastSeen": {"type": "string"},
                "name": {"type": "string"},
                "token": {"type": "string"},
                "userId": {"type": "string"},
                "userType": {"type": "string"}
            }
        },
        "handler.markReadRequest": {
            "type": "object",
            "required": ["recipient", "sender"],
            "properties": {
                "recipient": {"type": "string"},
                "sender": {"type": "string"}
            }
        },
        "handler.markReadResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "modified": {"type": "integer"}
            }
        },
        "handler.presenceResponse": {
            "type": "object",
            "properties": {
                "online": {"type": "array", "items": {"$ref": "#/definitions/realtime.Entry"}},
                "shopkeeperOnline": {"type": "boolean"}
            }
        },
        "realtime.Entry": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "userType": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Campus Chat API",
	Description:      "Student and shopkeeper direct messaging. Realtime events are served on /ws.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
