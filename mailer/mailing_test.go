package mailer

import (
	"testing"

	"bitbucket.org/mmdatafocus/leden_backend/models"
)

func TestRenderBody(t *testing.T) {
	member := &models.Member{FirstName: "Jan", LastName: "Jansen"}
	body := "Beste {{voornaam}} {{achternaam}}, welkom {{naam}}!"

	got := RenderBody(body, member)
	expected := "Beste Jan Jansen, welkom Jan Jansen!"
	if got != expected {
		t.Fatalf("RenderBody = %q, expected %q", got, expected)
	}
}

func TestRenderBody_NoPlaceholders(t *testing.T) {
	member := &models.Member{FirstName: "Jan"}
	body := "<p>Vaste tekst</p>"
	if got := RenderBody(body, member); got != body {
		t.Fatalf("body without placeholders modified: %q", got)
	}
}
