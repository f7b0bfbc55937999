package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Internship Documents API",
        "description": "Issues internship offer letters and completion certificates and verifies them by code.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Documents", "description": "Document issuance and retrieval"},
        {"name": "Verification", "description": "Public verification by code"}
    ],
    "paths": {
        "/documents/offer-letter": {
            "post": {
                "tags": ["Documents"],
                "summary": "Issue an internship offer letter",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OfferLetterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/documents/completion-certificate": {
            "post": {
                "tags": ["Documents"],
                "summary": "Issue an internship completion certificate",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CertificateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List issued documents, newest first",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "default": 50},
                    {"name": "offset", "in": "query", "type": "integer", "default": 0}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/documents/student/{id}": {
            "get": {
                "tags": ["Documents"],
                "summary": "List documents issued to a subject, newest first",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/documents/download/{token}": {
            "get": {
                "tags": ["Documents"],
                "summary": "Download an issued artifact with a signed token",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF stream"},
                    "404": {"description": "Unknown or expired token"}
                }
            }
        },
        "/verify/{code}": {
            "get": {
                "tags": ["Verification"],
                "summary": "Verify a document by its verification code",
                "parameters": [
                    {"name": "code", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Verified", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not verified", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited"}
                }
            }
        }
    },
    "definitions": {
        "OfferLetterRequest": {
            "type": "object",
            "properties": {
                "studentName": {"type": "string"},
                "studentEmail": {"type": "string"},
                "internshipTitle": {"type": "string"},
                "companyName": {"type": "string"},
                "startDate": {"type": "string", "example": "2026-01-05"},
                "endDate": {"type": "string", "example": "2026-04-03"},
                "stipend": {"type": "string"},
                "location": {"type": "string"},
                "supervisorName": {"type": "string"},
                "internshipId": {"type": "string"}
            },
            "required": ["studentName", "studentEmail", "internshipTitle", "companyName", "startDate", "endDate", "stipend", "location", "supervisorName", "internshipId"]
        },
        "CertificateRequest": {
            "type": "object",
            "properties": {
                "studentName": {"type": "string"},
                "internshipTitle": {"type": "string"},
                "companyName": {"type": "string"},
                "startDate": {"type": "string", "example": "2026-01-05"},
                "endDate": {"type": "string", "example": "2026-04-03"},
                "completionDate": {"type": "string", "example": "2026-04-03"},
                "performanceGrade": {"type": "string", "enum": ["A", "B", "C", "D"]},
                "skillsLearned": {"type": "array", "items": {"type": "string"}},
                "internshipId": {"type": "string"}
            },
            "required": ["studentName", "internshipTitle", "companyName", "startDate", "endDate", "completionDate", "performanceGrade", "skillsLearned", "internshipId"]
        },
        "DocumentResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string", "enum": ["offer_letter", "completion_certificate"]},
                "subjectRef": {"type": "string"},
                "internshipRef": {"type": "string"},
                "verificationCode": {"type": "string"},
                "artifactUrl": {"type": "string"},
                "issuedAt": {"type": "string"},
                "expiresAt": {"type": "string"}
            }
        },
        "VerificationResponse": {
            "type": "object",
            "properties": {
                "verified": {"type": "boolean"},
                "kind": {"type": "string"},
                "subjectRef": {"type": "string"},
                "internshipRef": {"type": "string"},
                "issuedAt": {"type": "string"},
                "expiresAt": {"type": "string"},
                "artifactUrl": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "fields": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
