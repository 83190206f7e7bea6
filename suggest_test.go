package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// setupSuggestTest creates a Gin engine with a mock OpenAI server and returns
// the router and a function to set the mock response. No DB needed — the AI
// handlers parse and return, they never write.
func setupSuggestTest() (*gin.Engine, *httptest.Server, func(int, interface{})) {
	var mockStatus int
	var mockBody interface{}

	mockOpenAI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(mockStatus)
		json.NewEncoder(w).Encode(mockBody)
	}))

	gin.SetMode(gin.TestMode)
	h := Handler{openAIBaseURL: mockOpenAI.URL}
	router := gin.New()
	// Skip auth middleware for tests — set a dummy user_id
	withUser := func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	}
	router.POST("/api/intake/parse", withUser, h.parseFoodInput)
	router.POST("/api/workouts/generate", withUser, h.generateWorkout)

	setMock := func(status int, body interface{}) {
		mockStatus = status
		mockBody = body
	}

	return router, mockOpenAI, setMock
}

// doJSONRequest sends a POST to the given path with the given body.
func doJSONRequest(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

/* ─── JSON array extraction ──────────────────────────────────────────── */

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		wantLen int
	}{
		{"bare array", `[{"name":"Eggs","category":"breakfast","calories":180}]`, false, 1},
		{"markdown fenced", "```json\n[{\"name\":\"Eggs\",\"category\":\"breakfast\",\"calories\":180}]\n```", false, 1},
		{"prose wrapped", `Here are your meals: [{"name":"Eggs","category":"breakfast","calories":180}] Enjoy!`, false, 1},
		{"empty array", `[]`, false, 0},
		{"no array at all", `I could not recognize any food in that input.`, true, 0},
		{"array of garbage", `[not json]`, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var meals []parsedMeal
			err := extractJSONArray(tt.content, &meals)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(meals) != tt.wantLen {
				t.Errorf("got %d meals, want %d", len(meals), tt.wantLen)
			}
		})
	}
}

/* ─── Food parsing ───────────────────────────────────────────────────── */

func TestParseFood_Success(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	reply := `[{"name":"Scrambled eggs","category":"breakfast","calories":180,"protein_g":14,"carbs_g":2,"fat_g":12},
	           {"name":"Orange juice","category":"breakfast","calories":110,"protein_g":1.5,"carbs_g":26,"fat_g":0.3}]`
	setMock(http.StatusOK, chatResponse(reply))
	t.Setenv("OPENAI_API_KEY", "test-key")

	w := doJSONRequest(router, "/api/intake/parse", `{"description":"2 eggs scrambled and a glass of OJ","date":"2026-08-30"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Meals []parsedMeal `json:"meals"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Meals) != 2 {
		t.Fatalf("expected 2 meals, got %d", len(resp.Meals))
	}
	if resp.Meals[0].Name != "Scrambled eggs" {
		t.Errorf("expected name 'Scrambled eggs', got '%s'", resp.Meals[0].Name)
	}
	if resp.Meals[1].Calories != 110 {
		t.Errorf("expected calories 110, got %d", resp.Meals[1].Calories)
	}
}

func TestParseFood_DropsInvalidEntries(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	// Missing name, bad category, negative calories — only the last survives.
	reply := `[{"name":"","category":"lunch","calories":100},
	           {"name":"Mystery","category":"brunch","calories":100},
	           {"name":"Banana","category":"snack","calories":-5},
	           {"name":"Banana","category":"snack","calories":105,"protein_g":1.3,"carbs_g":27,"fat_g":0.4}]`
	setMock(http.StatusOK, chatResponse(reply))
	t.Setenv("OPENAI_API_KEY", "test-key")

	w := doJSONRequest(router, "/api/intake/parse", `{"description":"a banana"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Meals []parsedMeal `json:"meals"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Meals) != 1 {
		t.Fatalf("expected 1 meal, got %d", len(resp.Meals))
	}
	if resp.Meals[0].Name != "Banana" || resp.Meals[0].Calories != 105 {
		t.Errorf("unexpected survivor: %+v", resp.Meals[0])
	}
}

func TestParseFood_Unrecognized(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	setMock(http.StatusOK, chatResponse(`[]`))
	t.Setenv("OPENAI_API_KEY", "test-key")

	w := doJSONRequest(router, "/api/intake/parse", `{"description":"asdfghjkl"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Meals []parsedMeal `json:"meals"`
		Error string       `json:"error"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "unrecognized" {
		t.Errorf("expected error 'unrecognized', got '%s'", resp.Error)
	}
	if resp.Meals == nil || len(resp.Meals) != 0 {
		t.Errorf("expected empty meals array, got %v", resp.Meals)
	}
}

func TestParseFood_OpenAIError500(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	setMock(http.StatusInternalServerError, map[string]string{"error": "server error"})
	t.Setenv("OPENAI_API_KEY", "test-key")

	w := doJSONRequest(router, "/api/intake/parse", `{"description":"banana"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "food parsing failed" {
		t.Errorf("expected error 'food parsing failed', got '%s'", resp["error"])
	}
}

func TestParseFood_EmptyDescription(t *testing.T) {
	router, mockServer, _ := setupSuggestTest()
	defer mockServer.Close()

	w := doJSONRequest(router, "/api/intake/parse", `{"description":"   "}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestParseFood_MalformedReply(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	// OpenAI returns prose with no JSON array anywhere
	setMock(http.StatusOK, chatResponse(`I am not able to help with that.`))
	t.Setenv("OPENAI_API_KEY", "test-key")

	w := doJSONRequest(router, "/api/intake/parse", `{"description":"banana"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}
}

/* ─── Workout generation ─────────────────────────────────────────────── */

func TestGenerateWorkout_Success(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	reply := `[{"day":"Monday","focus_area":"Push","exercises":[
	            {"name":"Bench Press","sets":[{"reps":8,"weight_kg":60,"completed":false},{"reps":8,"weight_kg":60,"completed":false}]}]},
	           {"day":"Thursday","focus_area":"Pull","exercises":[
	            {"name":"Barbell Row","sets":[{"reps":10,"weight_kg":50,"completed":false}]}]}]`
	setMock(http.StatusOK, chatResponse(reply))
	t.Setenv("OPENAI_API_KEY", "test-key")

	w := doJSONRequest(router, "/api/workouts/generate",
		`{"days":2,"days_of_week":["Monday","Thursday"],"focus_areas":["Push","Pull"],"duration":60,"equipment":["barbell"],"experience":"intermediate"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Days []generatedWorkoutDay `json:"days"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(resp.Days))
	}
	if resp.Days[0].Day != "Monday" || resp.Days[0].FocusArea != "Push" {
		t.Errorf("unexpected first day: %+v", resp.Days[0])
	}
	if len(resp.Days[0].Exercises) != 1 || len(resp.Days[0].Exercises[0].Sets) != 2 {
		t.Errorf("unexpected exercise shape: %+v", resp.Days[0].Exercises)
	}
}

func TestGenerateWorkout_DropsEmptyDays(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	reply := `[{"day":"Monday","focus_area":"Push","exercises":[]},
	           {"day":"Friday","focus_area":"Legs","exercises":[
	            {"name":"Squat","sets":[{"reps":5,"weight_kg":80,"completed":false}]}]}]`
	setMock(http.StatusOK, chatResponse(reply))
	t.Setenv("OPENAI_API_KEY", "test-key")

	w := doJSONRequest(router, "/api/workouts/generate",
		`{"days":2,"focus_areas":["Push","Legs"],"duration":45}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Days []generatedWorkoutDay `json:"days"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(resp.Days))
	}
	if resp.Days[0].Day != "Friday" {
		t.Errorf("expected Friday to survive, got %s", resp.Days[0].Day)
	}
}

func TestGenerateWorkout_MissingRequiredFields(t *testing.T) {
	router, mockServer, _ := setupSuggestTest()
	defer mockServer.Close()

	tests := []struct {
		name string
		body string
	}{
		{"zero days", `{"days":0,"focus_areas":["Push"]}`},
		{"no focus areas", `{"days":3,"focus_areas":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSONRequest(router, "/api/workouts/generate", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGenerateWorkout_OpenAIError500(t *testing.T) {
	router, mockServer, setMock := setupSuggestTest()
	defer mockServer.Close()

	setMock(http.StatusInternalServerError, map[string]string{"error": "server error"})
	t.Setenv("OPENAI_API_KEY", "test-key")

	w := doJSONRequest(router, "/api/workouts/generate", `{"days":3,"focus_areas":["Full body"]}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "workout generation failed" {
		t.Errorf("expected error 'workout generation failed', got '%s'", resp["error"])
	}
}
