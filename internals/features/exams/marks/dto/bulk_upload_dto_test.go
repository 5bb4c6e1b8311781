package dto

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"
)

func TestParseUploadRowsAliases(t *testing.T) {
	body := `{"rows":[
		{"Dummy Number":"DN0001","Course Code":"CS101","Marks Obtained":45.5,"Marks Out Of":100,"Remarks":" ok "},
		{"dummyNumber":"DN0002","courseCode":"CS101","total_marks_obtained":"60","total_marks":"100"},
		{"dummy_number":"DN0003","course_code":null,"marks_obtained":"","marks_out_of":100}
	]}`
	rows, err := ParseUploadRows(gjson.Get(body, "rows"))
	if err != nil {
		t.Fatalf("ParseUploadRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	first := rows[0]
	if first.RowNumber != 2 || first.DummyNumber != "DN0001" || first.MarksObtained != "45.5" || first.MarksOutOf != "100" || first.Remarks != "ok" {
		t.Fatalf("row 0 = %+v", first)
	}
	if rows[1].DummyNumber != "DN0002" || rows[1].MarksObtained != "60" || rows[1].RowNumber != 3 {
		t.Fatalf("row 1 = %+v", rows[1])
	}
	if rows[2].CourseCode != "" || rows[2].MarksObtained != "" {
		t.Fatalf("row 2 = %+v", rows[2])
	}
}

func TestParseUploadRowsRejects(t *testing.T) {
	tests := map[string]string{
		"missing":    `{}`,
		"not array":  `{"rows":{"a":1}}`,
		"empty":      `{"rows":[]}`,
		"not object": `{"rows":[{"dummy_number":"DN1"},3]}`,
	}
	for name, body := range tests {
		_, err := ParseUploadRows(gjson.Get(body, "rows"))
		fe, ok := err.(*fiber.Error)
		if !ok || fe.Code != fiber.StatusBadRequest {
			t.Fatalf("%s: err = %v, want 400", name, err)
		}
	}
}
