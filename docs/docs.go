// Package docs регистрирует описание API для swaggo/http-swagger.
// Держится в соответствии с аннотациями в internal/handlers.
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
        "/api/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Регистрация нового пользователя",
                "parameters": [
                    {"description": "Данные регистрации", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.registerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.profileResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/helpers.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/helpers.Response"}}
                }
            }
        },
        "/api/auth/me": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Текущий пользователь",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.profileResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/helpers.Response"}}
                }
            }
        },
        "/api/articles": {
            "get": {
                "produces": ["application/json"],
                "tags": ["articles"],
                "summary": "Список статей",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.ArticleSummaryDTO"}}}
                }
            },
            "post": {
                "security": [{"BasicAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["articles"],
                "summary": "Опубликовать статью",
                "parameters": [
                    {"description": "Заголовок и текст", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ArticleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.ArticleDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/helpers.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/helpers.Response"}}
                }
            }
        },
        "/api/articles/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["articles"],
                "summary": "Статья по ID",
                "parameters": [{"type": "integer", "description": "ID статьи", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ArticleDTO"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/helpers.Response"}}
                }
            },
            "patch": {
                "security": [{"BasicAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["articles"],
                "summary": "Редактировать статью",
                "parameters": [
                    {"type": "integer", "description": "ID статьи", "name": "id", "in": "path", "required": true},
                    {"description": "Новые заголовок и текст", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ArticleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ArticleDTO"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/helpers.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/helpers.Response"}}
                }
            },
            "delete": {
                "security": [{"BasicAuth": []}],
                "tags": ["articles"],
                "summary": "Снять статью (draft)",
                "parameters": [{"type": "integer", "description": "ID статьи", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/helpers.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/helpers.Response"}}
                }
            }
        },
        "/api/articles/{id}/discuss": {
            "get": {
                "produces": ["application/json"],
                "tags": ["discuss"],
                "summary": "Ответы статьи",
                "parameters": [
                    {"type": "integer", "description": "ID статьи", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Номер страницы", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Начало интервала", "name": "begin", "in": "query"},
                    {"type": "integer", "description": "Конец интервала (не включая)", "name": "end", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.DiscussDTO"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/helpers.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/helpers.Response"}}
                }
            },
            "post": {
                "security": [{"BasicAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["discuss"],
                "summary": "Ответить в обсуждении",
                "parameters": [
                    {"type": "integer", "description": "ID статьи", "name": "id", "in": "path", "required": true},
                    {"description": "Ответ", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ReplyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.DiscussDTO"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/helpers.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/helpers.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/helpers.Response"}}
                }
            }
        },
        "/api/articles/{id}/discuss/pages": {
            "get": {
                "produces": ["application/json"],
                "tags": ["discuss"],
                "summary": "Число ответов и страниц",
                "parameters": [{"type": "integer", "description": "ID статьи", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/helpers.Response"}}
                }
            }
        },
        "/api/articles/{id}/discuss/can-reply": {
            "get": {
                "security": [{"BasicAuth": []}],
                "produces": ["application/json"],
                "tags": ["discuss"],
                "summary": "Можно ли ответить",
                "parameters": [{"type": "integer", "description": "ID статьи", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "boolean"}}}
                }
            }
        },
        "/api/articles/{id}/discuss/close": {
            "post": {
                "security": [{"BasicAuth": []}],
                "tags": ["discuss"],
                "summary": "Закрыть обсуждение",
                "parameters": [{"type": "integer", "description": "ID статьи", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/helpers.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/helpers.Response"}}
                }
            }
        },
        "/api/articles/{id}/discuss/open": {
            "post": {
                "security": [{"BasicAuth": []}],
                "tags": ["discuss"],
                "summary": "Открыть обсуждение",
                "parameters": [{"type": "integer", "description": "ID статьи", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/helpers.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/helpers.Response"}}
                }
            }
        }
    },
    "definitions": {
        "helpers.Response": {
            "type": "object",
            "properties": {"data": {}, "error": {"type": "string"}}
        },
        "handlers.registerRequest": {
            "type": "object",
            "properties": {
                "password": {"type": "string", "example": "secret"},
                "username": {"type": "string", "example": "bob"}
            }
        },
        "handlers.profileResponse": {
            "type": "object",
            "properties": {
                "capabilities": {"type": "array", "items": {"type": "string"}},
                "id": {"type": "integer"},
                "role": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "models.ArticleRequest": {
            "type": "object",
            "properties": {
                "content": {"type": "string", "example": "<p>Контент</p>"},
                "title": {"type": "string", "example": "Unit of Work в Go"}
            }
        },
        "models.ReplyRequest": {
            "type": "object",
            "properties": {
                "content": {"type": "string", "example": "Спасибо за статью"},
                "discussId": {"type": "integer", "example": 0}
            }
        },
        "models.ArticleDTO": {
            "type": "object",
            "properties": {
                "author": {"type": "string"},
                "content": {"type": "string"},
                "createdAt": {"type": "string"},
                "discussOpen": {"type": "boolean"},
                "id": {"type": "integer"},
                "numberOfDiscuss": {"type": "integer"},
                "title": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.ArticleSummaryDTO": {
            "type": "object",
            "properties": {
                "author": {"type": "string"},
                "createdAt": {"type": "string"},
                "id": {"type": "integer"},
                "numberOfDiscuss": {"type": "integer"},
                "title": {"type": "string"}
            }
        },
        "models.DiscussDTO": {
            "type": "object",
            "properties": {
                "articleId": {"type": "integer"},
                "articleTitle": {"type": "string"},
                "author": {"type": "string"},
                "content": {"type": "string"},
                "createdAt": {"type": "string"},
                "id": {"type": "integer"},
                "replyTo": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BasicAuth": {"type": "basic"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Xblog API",
	Description:      "Публикация статей и обсуждения к ним.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
