// Package e2e_test contains end-to-end tests against a running API server.
package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"testing"
	"time"
)

var apiBaseURL = getEnvOrDefault("API_URL", "http://localhost:8080")

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// skipIfNotE2E skips the test unless end-to-end tests are enabled
func skipIfNotE2E(t *testing.T) {
	if os.Getenv("E2E_TESTS") != "true" {
		t.Skip("E2E tests not enabled. Set E2E_TESTS=true to run")
	}
}

func TestE2E_HealthCheck(t *testing.T) {
	skipIfNotE2E(t)

	resp, err := http.Get(apiBaseURL + "/health")
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if result["success"] != true {
		t.Errorf("Expected success=true, got %v", result["success"])
	}
}

func TestE2E_PipelineRunFromCSV(t *testing.T) {
	skipIfNotE2E(t)

	csvContent := "Invoice,StockCode,Description,Quantity,InvoiceDate,Price,Customer ID,Country\n" +
		"536365,85123A,WHITE HANGING HEART,6,2024-01-05 07:45:00,2.55,17850,United Kingdom\n" +
		"536366,85123A,WHITE HANGING HEART,2,2024-01-08 10:30:00,2.55,17850,United Kingdom\n" +
		"536367,22752,SET 7 BABUSHKA NESTING BOXES,4,2023-10-01 09:15:00,7.65,13047,United Kingdom\n"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "e2e-transactions.csv")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(csvContent)); err != nil {
		t.Fatalf("Failed to write CSV content: %v", err)
	}
	if err := writer.WriteField("snapshot_date", "2024-01-10"); err != nil {
		t.Fatalf("Failed to write form field: %v", err)
	}
	writer.Close()

	client := &http.Client{Timeout: 60 * time.Second}
	req, _ := http.NewRequest("POST", apiBaseURL+"/api/pipeline/run", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Pipeline run request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("Pipeline run returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if result["success"] != true {
		t.Fatalf("Expected success=true, got %v", result["success"])
	}

	data, ok := result["data"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected data object in response")
	}
	if data["customers"] != float64(2) {
		t.Errorf("Expected 2 customers, got %v", data["customers"])
	}
	if data["run_id"] == "" {
		t.Error("Expected a non-empty run_id")
	}

	t.Logf("Pipeline run complete: %v", data)
}

func TestE2E_ProfilesAndSummary(t *testing.T) {
	skipIfNotE2E(t)

	resp, err := http.Get(apiBaseURL + "/api/profiles?limit=10")
	if err != nil {
		t.Fatalf("Profiles request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Profiles returned status %d", resp.StatusCode)
	}

	var profilesResult map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&profilesResult); err != nil {
		t.Fatalf("Failed to decode profiles response: %v", err)
	}
	if profilesResult["success"] != true {
		t.Errorf("Expected success=true, got %v", profilesResult["success"])
	}

	summaryResp, err := http.Get(apiBaseURL + "/api/summary")
	if err != nil {
		t.Fatalf("Summary request failed: %v", err)
	}
	defer summaryResp.Body.Close()

	if summaryResp.StatusCode != http.StatusOK {
		t.Fatalf("Summary returned status %d", summaryResp.StatusCode)
	}
}

func TestE2E_ProfileByCustomerID(t *testing.T) {
	skipIfNotE2E(t)

	customerID := os.Getenv("E2E_CUSTOMER_ID")
	if customerID == "" {
		t.Skip("E2E_CUSTOMER_ID not set")
	}

	resp, err := http.Get(fmt.Sprintf("%s/api/profiles/%s", apiBaseURL, customerID))
	if err != nil {
		t.Fatalf("Profile request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Profile returned status %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	data, ok := result["data"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected data object in response")
	}
	if data["customer_id"] != customerID {
		t.Errorf("Expected customer_id %s, got %v", customerID, data["customer_id"])
	}
}
