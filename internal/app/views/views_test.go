package views

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yigit/studentregistry/internal/app/models"
	"github.com/yigit/studentregistry/internal/pkg/flash"
)

func TestPhotoURL(t *testing.T) {
	tests := map[string]string{
		"images/account.png": "/static/images/account.png",
		"uploads/a.png":      "/static/uploads/a.png",
		"/uploads/a.png":     "/static/uploads/a.png",
		"https://res.cloudinary.com/demo/image/upload/v1/students/a.png": "https://res.cloudinary.com/demo/image/upload/v1/students/a.png",
	}
	for ref, want := range tests {
		if got := PhotoURL(ref); got != want {
			t.Errorf("PhotoURL(%q) = %q, want %q", ref, got, want)
		}
	}
}

func TestIndexTemplate(t *testing.T) {
	tmpl, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	page := IndexPage{
		Students: []*models.Student{{
			ID: 1, IDNo: "2021-001", LastName: "<b>Cruz</b>", FirstName: "Ana",
			Course: "BSIT", Level: 3, Photo: "images/account.png",
		}},
		Flashes: []flash.Message{{Category: flash.CategorySuccess, Message: "Student information saved successfully"}},
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, IndexTemplate, page); err != nil {
		t.Fatalf("execute: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<b>Cruz</b>") || !strings.Contains(out, "&lt;b&gt;Cruz&lt;/b&gt;") {
		t.Fatalf("student field rendered unescaped")
	}
	for _, want := range []string{
		`src="/static/images/account.png"`,
		`class="flash success"`,
		"Student information saved successfully",
		"/deletestudent?id=1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("page missing %q", want)
		}
	}
}

func TestIndexTemplateEmptyList(t *testing.T) {
	tmpl, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, IndexTemplate, IndexPage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(buf.String(), "No students found.") {
		t.Fatalf("empty list message missing")
	}
}
