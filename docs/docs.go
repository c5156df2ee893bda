// Package docs holds the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag/v2"

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
		"/audit/{entityType}/{entityId}": {
			"get": {
				"tags": [
					"audit"
				],
				"summary": "List for entity",
				"operationId": "getAuditListForEntity",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "entityType",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "entityId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/health": {
			"get": {
				"tags": [
					"system"
				],
				"summary": "Check",
				"operationId": "getHealthCheck",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				}
			}
		},
		"/inspections": {
			"post": {
				"tags": [
					"inspections"
				],
				"summary": "Create",
				"operationId": "postInspectionsCreate",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"inspections"
				],
				"summary": "List by return",
				"operationId": "getInspectionsListByReturn",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/inspections/{id}": {
			"get": {
				"tags": [
					"inspections"
				],
				"summary": "Get by id",
				"operationId": "getInspectionsGetByID",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"put": {
				"tags": [
					"inspections"
				],
				"summary": "Update findings",
				"operationId": "putInspectionsUpdateFindings",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/inspections/{id}/complete": {
			"post": {
				"tags": [
					"inspections"
				],
				"summary": "Complete",
				"operationId": "postInspectionsComplete",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/inspections/{id}/evidence": {
			"post": {
				"tags": [
					"inspections"
				],
				"summary": "Request evidence upload",
				"operationId": "postInspectionsRequestEvidenceUpload",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/inspections/{id}/evidence/{key}": {
			"get": {
				"tags": [
					"inspections"
				],
				"summary": "Evidence url",
				"operationId": "getInspectionsEvidenceURL",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "key",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/inspections/{id}/fail": {
			"post": {
				"tags": [
					"inspections"
				],
				"summary": "Fail",
				"operationId": "postInspectionsFail",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/inspections/{id}/start": {
			"post": {
				"tags": [
					"inspections"
				],
				"summary": "Start",
				"operationId": "postInspectionsStart",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/items": {
			"post": {
				"tags": [
					"items"
				],
				"summary": "Create",
				"operationId": "postItemsCreate",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"items"
				],
				"summary": "List",
				"operationId": "getItemsList",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/items/code/{code}": {
			"get": {
				"tags": [
					"items"
				],
				"summary": "Get by code",
				"operationId": "getItemsGetByCode",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "code",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/items/{id}": {
			"get": {
				"tags": [
					"items"
				],
				"summary": "Get by id",
				"operationId": "getItemsGetByID",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"items"
				],
				"summary": "Delete",
				"operationId": "deleteItemsDelete",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/items/{id}/pricing": {
			"put": {
				"tags": [
					"items"
				],
				"summary": "Update pricing",
				"operationId": "putItemsUpdatePricing",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/items/{id}/status": {
			"put": {
				"tags": [
					"items"
				],
				"summary": "Change status",
				"operationId": "putItemsChangeStatus",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/rentals/bookings": {
			"post": {
				"tags": [
					"rentals"
				],
				"summary": "Create booking",
				"operationId": "postTransactionsCreateBooking",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/rentals/bookings/{id}/cancel": {
			"post": {
				"tags": [
					"rentals"
				],
				"summary": "Cancel booking",
				"operationId": "postTransactionsCancelBooking",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/rentals/bookings/{id}/submit": {
			"post": {
				"tags": [
					"rentals"
				],
				"summary": "Submit booking",
				"operationId": "postTransactionsSubmitBooking",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns": {
			"post": {
				"tags": [
					"returns"
				],
				"summary": "Open",
				"operationId": "postReturnsOpen",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"returns"
				],
				"summary": "List",
				"operationId": "getReturnsList",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/bulk/process": {
			"post": {
				"tags": [
					"returns"
				],
				"summary": "Bulk process",
				"operationId": "postReturnsBulkProcess",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/bulk/status": {
			"post": {
				"tags": [
					"returns"
				],
				"summary": "Bulk status",
				"operationId": "postReturnsBulkStatus",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/damaged": {
			"get": {
				"tags": [
					"returns"
				],
				"summary": "List damaged",
				"operationId": "getReturnsListDamaged",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/estimate": {
			"post": {
				"tags": [
					"returns"
				],
				"summary": "Estimate",
				"operationId": "postReturnsEstimate",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/lines/pending": {
			"get": {
				"tags": [
					"returns"
				],
				"summary": "List pending lines",
				"operationId": "getReturnsListPendingLines",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/number/{number}": {
			"get": {
				"tags": [
					"returns"
				],
				"summary": "Get by number",
				"operationId": "getReturnsGetByNumber",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "number",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/overdue": {
			"get": {
				"tags": [
					"returns"
				],
				"summary": "List overdue",
				"operationId": "getReturnsListOverdue",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/{id}": {
			"get": {
				"tags": [
					"returns"
				],
				"summary": "Get by id",
				"operationId": "getReturnsGetByID",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"put": {
				"tags": [
					"returns"
				],
				"summary": "Update",
				"operationId": "putReturnsUpdate",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/{id}/cancel": {
			"post": {
				"tags": [
					"returns"
				],
				"summary": "Cancel",
				"operationId": "postReturnsCancel",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/{id}/finalize": {
			"post": {
				"tags": [
					"returns"
				],
				"summary": "Finalize",
				"operationId": "postReturnsFinalize",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/{id}/lines": {
			"post": {
				"tags": [
					"returns"
				],
				"summary": "Add line",
				"operationId": "postReturnsAddLine",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/{id}/lines/{lineId}": {
			"put": {
				"tags": [
					"returns"
				],
				"summary": "Update line",
				"operationId": "putReturnsUpdateLine",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "lineId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"returns"
				],
				"summary": "Remove line",
				"operationId": "deleteReturnsRemoveLine",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "lineId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/{id}/lines/{lineId}/damage": {
			"post": {
				"tags": [
					"returns"
				],
				"summary": "Assess damage",
				"operationId": "postReturnsAssessDamage",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "lineId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/{id}/lines/{lineId}/late-fee": {
			"post": {
				"tags": [
					"returns"
				],
				"summary": "Calculate late fee",
				"operationId": "postReturnsCalculateLateFee",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "lineId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/{id}/lines/{lineId}/process": {
			"post": {
				"tags": [
					"returns"
				],
				"summary": "Process line",
				"operationId": "postReturnsProcessLine",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "lineId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/{id}/lines/{lineId}/status": {
			"post": {
				"tags": [
					"returns"
				],
				"summary": "Update line status",
				"operationId": "postReturnsUpdateLineStatus",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "lineId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/{id}/receipt": {
			"get": {
				"tags": [
					"returns"
				],
				"summary": "Receipt",
				"operationId": "getReturnsReceipt",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/{id}/release-deposit": {
			"post": {
				"tags": [
					"returns"
				],
				"summary": "Release deposit",
				"operationId": "postReturnsReleaseDeposit",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/returns/{id}/status": {
			"post": {
				"tags": [
					"returns"
				],
				"summary": "Change status",
				"operationId": "postReturnsChangeStatus",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/sales": {
			"post": {
				"tags": [
					"sales"
				],
				"summary": "Create sale",
				"operationId": "postTransactionsCreateSale",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/stock": {
			"get": {
				"tags": [
					"stock"
				],
				"summary": "Get",
				"operationId": "getStockGet",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/stock/adjust": {
			"post": {
				"tags": [
					"stock"
				],
				"summary": "Adjust",
				"operationId": "postStockAdjust",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/stock/levels": {
			"put": {
				"tags": [
					"stock"
				],
				"summary": "Update levels",
				"operationId": "putStockUpdateLevels",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/stock/low": {
			"get": {
				"tags": [
					"stock"
				],
				"summary": "List low",
				"operationId": "getStockListLow",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/stock/release": {
			"post": {
				"tags": [
					"stock"
				],
				"summary": "Release",
				"operationId": "postStockRelease",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/stock/reserve": {
			"post": {
				"tags": [
					"stock"
				],
				"summary": "Reserve",
				"operationId": "postStockReserve",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Create",
				"operationId": "postTransactionsCreate",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"transactions"
				],
				"summary": "List",
				"operationId": "getTransactionsList",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/number/{number}": {
			"get": {
				"tags": [
					"transactions"
				],
				"summary": "Get by number",
				"operationId": "getTransactionsGetByNumber",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "number",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}": {
			"get": {
				"tags": [
					"transactions"
				],
				"summary": "Get by id",
				"operationId": "getTransactionsGetByID",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"put": {
				"tags": [
					"transactions"
				],
				"summary": "Update",
				"operationId": "putTransactionsUpdate",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/cancel": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Cancel",
				"operationId": "postTransactionsCancel",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/checkout": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Checkout",
				"operationId": "postTransactionsCheckout",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/complete-rental-return": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Complete rental return",
				"operationId": "postTransactionsCompleteRentalReturn",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/document": {
			"get": {
				"tags": [
					"transactions"
				],
				"summary": "Document",
				"operationId": "getTransactionsDocument",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/extend": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Extend",
				"operationId": "postTransactionsExtend",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/rental-payments": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "CollectRentalPayment",
				"operationId": "postTransactionsRentalPayments",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/fulfill": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Fulfill",
				"operationId": "postTransactionsFulfill",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/lines": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Add line",
				"operationId": "postTransactionsAddLine",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/lines/{lineId}": {
			"put": {
				"tags": [
					"transactions"
				],
				"summary": "Update line",
				"operationId": "putTransactionsUpdateLine",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "lineId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"transactions"
				],
				"summary": "Remove line",
				"operationId": "deleteTransactionsRemoveLine",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "lineId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/lines/{lineId}/discount": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Apply line discount",
				"operationId": "postTransactionsApplyLineDiscount",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "lineId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/lines/{lineId}/rental-period": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Update line rental period",
				"operationId": "postTransactionsUpdateLineRentalPeriod",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "lineId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/lines/{lineId}/returns": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Process line return",
				"operationId": "postTransactionsProcessLineReturn",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "string",
						"name": "lineId",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/overdue": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Mark overdue",
				"operationId": "postTransactionsMarkOverdue",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/payments": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Apply payment",
				"operationId": "postTransactionsApplyPayment",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/pickup": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Pickup",
				"operationId": "postTransactionsPickup",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/refunds": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Refund",
				"operationId": "postTransactionsRefund",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/returns": {
			"get": {
				"tags": [
					"transactions"
				],
				"summary": "List returns",
				"operationId": "getTransactionsListReturns",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/status": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Change status",
				"operationId": "postTransactionsChangeStatus",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/transactions/{id}/submit": {
			"post": {
				"tags": [
					"transactions"
				],
				"summary": "Submit",
				"operationId": "postTransactionsSubmit",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/units": {
			"post": {
				"tags": [
					"units"
				],
				"summary": "Receive",
				"operationId": "postUnitsReceive",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"get": {
				"tags": [
					"units"
				],
				"summary": "List",
				"operationId": "getUnitsList",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/units/{id}": {
			"get": {
				"tags": [
					"units"
				],
				"summary": "Get by id",
				"operationId": "getUnitsGetByID",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"delete": {
				"tags": [
					"units"
				],
				"summary": "Delete",
				"operationId": "deleteUnitsDelete",
				"produces": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"204": {
						"description": "No Content"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/units/{id}/condition": {
			"post": {
				"tags": [
					"units"
				],
				"summary": "Change condition",
				"operationId": "postUnitsChangeCondition",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/units/{id}/damage": {
			"post": {
				"tags": [
					"units"
				],
				"summary": "Mark as damaged",
				"operationId": "postUnitsMarkAsDamaged",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/units/{id}/maintenance": {
			"post": {
				"tags": [
					"units"
				],
				"summary": "Send for maintenance",
				"operationId": "postUnitsSendForMaintenance",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/units/{id}/maintenance/complete": {
			"post": {
				"tags": [
					"units"
				],
				"summary": "Complete maintenance",
				"operationId": "postUnitsCompleteMaintenance",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/units/{id}/move": {
			"post": {
				"tags": [
					"units"
				],
				"summary": "Move",
				"operationId": "postUnitsMove",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/units/{id}/rent-out": {
			"post": {
				"tags": [
					"units"
				],
				"summary": "Rent out",
				"operationId": "postUnitsRentOut",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/units/{id}/retire": {
			"post": {
				"tags": [
					"units"
				],
				"summary": "Retire",
				"operationId": "postUnitsRetire",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/units/{id}/return": {
			"post": {
				"tags": [
					"units"
				],
				"summary": "Return",
				"operationId": "postUnitsReturn",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/units/{id}/sell": {
			"post": {
				"tags": [
					"units"
				],
				"summary": "Sell",
				"operationId": "postUnitsSell",
				"produces": [
					"application/json"
				],
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Bad Request"
					},
					"404": {
						"description": "Not Found"
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Bearer token authentication. Format: \"Bearer {token}\"",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Rental Core API",
	Description:      "Rental and sale inventory: items, units, stock, transactions, returns and inspections.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
