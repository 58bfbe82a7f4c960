package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Coursegrid Solver API",
        "description": "Constraint-based weekly timetable solver with persisted runs and CSV/PDF export.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {
                        "description": "Ready"
                    }
                }
            }
        },
        "/auth/login": {
            "post": {
                "summary": "Exchange a client ID and key for an access token",
                "tags": ["Authentication"],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/timetables/generate": {
            "post": {
                "summary": "Run the constraint solver against a week shape, subjects and rooms",
                "tags": ["Timetable"],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/timetables": {
            "get": {
                "summary": "List solve-run history",
                "tags": ["Timetable"],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/timetables/{id}": {
            "get": {
                "summary": "Fetch a persisted solve run",
                "tags": ["Timetable"],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "delete": {
                "summary": "Delete a persisted solve run",
                "tags": ["Timetable"],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/timetables/{id}/export": {
            "get": {
                "summary": "Render a solve run's timetable to CSV or PDF",
                "tags": ["Timetable"],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/export/{token}": {
            "get": {
                "summary": "Download a rendered export by signed token",
                "tags": ["Timetable"],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
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
