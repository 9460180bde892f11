// Package docs serves the OpenAPI description of the HTTP API.
// Regenerate with: swag init -g cmd/elite_blog/main.go
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
        "/health": {"get": {"tags": ["ops"], "summary": "Health check", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/api/v1/posts": {"get": {"tags": ["posts"], "summary": "List blog posts", "parameters": [{"type": "string", "name": "category", "in": "query"}, {"type": "integer", "name": "category_id", "in": "query"}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/posts/{id}": {"get": {"tags": ["posts"], "summary": "Get a blog post", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/v1/events": {"get": {"tags": ["posts"], "summary": "Upcoming and past events", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/gallery": {"get": {"tags": ["gallery"], "summary": "List gallery images", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/categories": {"get": {"tags": ["categories"], "summary": "List categories", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/categories/selected": {
            "get": {"tags": ["categories"], "summary": "Selected category", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["categories"], "summary": "Select a category", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["categories"], "summary": "Clear the selection", "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/auth/login": {"post": {"tags": ["auth"], "summary": "Admin sign-in", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/api/v1/auth/refresh": {"post": {"tags": ["auth"], "summary": "Rotate tokens", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/api/v1/auth/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Sign out", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/auth/state": {"get": {"tags": ["auth"], "summary": "Session state", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/admin/posts": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "List posts for editing", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Create a post", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/api/v1/admin/posts/{id}": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Update a post", "responses": {"200": {"description": "OK"}, "207": {"description": "Multi-Status"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Delete a post", "responses": {"204": {"description": "No Content"}, "207": {"description": "Multi-Status"}}}
        },
        "/api/v1/admin/categories": {"post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Create a category", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}},
        "/api/v1/admin/categories/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Delete a category", "responses": {"204": {"description": "No Content"}}}},
        "/api/v1/admin/gallery": {"post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Add gallery images", "responses": {"201": {"description": "Created"}}}},
        "/api/v1/admin/gallery/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Delete a gallery image", "responses": {"204": {"description": "No Content"}, "207": {"description": "Multi-Status"}}}},
        "/api/v1/admin/uploads/{collection}": {"post": {"security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"], "tags": ["admin"], "summary": "Upload images", "responses": {"201": {"description": "Created"}, "413": {"description": "Request Entity Too Large"}, "415": {"description": "Unsupported Media Type"}, "502": {"description": "Bad Gateway"}}}},
        "/api/v1/admin/storage/orphans": {"get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Orphaned files", "responses": {"200": {"description": "OK"}}}},
        "/api/v1/admin/storage/sweep": {"post": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Delete orphaned files", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "elite_blog API",
	Description:      "Blog, gallery and events backend with an admin area.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
