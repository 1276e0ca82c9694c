package main

import (
	"compress/gzip"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

var categories = []string{"Club", "Hip Hop", "Birthday", "Brunch", "Day Party", "Latin", "Gala", "Holiday"}

var formTypes = []string{"With Photo", "No Photo", "Birthday"}

// sampleFlyer is the backend flyer document shape read by the sample loader.
type sampleFlyer struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Price         string    `json:"price"`
	HasPhotos     bool      `json:"hasPhotos"`
	FormType      string    `json:"form_type"`
	Image         string    `json:"image"`
	Categories    []string  `json:"categories"`
	RecentlyAdded bool      `json:"recently_added"`
	Featured      bool      `json:"featured"`
	CreatedAt     time.Time `json:"created_at"`
}

// generateSampleFlyers writes a gzip-compressed JSON-lines sample catalog
// used when the flyer backend is unreachable.
func main() {
	out := flag.String("out", "data/samples/flyers.jsonl.gz", "output file")
	count := flag.Int("n", 40, "number of flyers")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	faker := gofakeit.New(*seed)
	flyers := make([]sampleFlyer, 0, *count)
	for i := 0; i < *count; i++ {
		flyers = append(flyers, newFlyer(faker, i))
	}

	if err := writeFlyers(*out, flyers); err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}

	fmt.Printf("Created %s with %d flyers\n", *out, len(flyers))
}

func newFlyer(f *gofakeit.Faker, i int) sampleFlyer {
	formType := f.RandomString(formTypes)
	hasPhotos := formType == "With Photo"

	prices := []string{"$10.00", "$15.00", "$40.00"}
	if hasPhotos {
		prices = []string{"$10.00", "$15.00"}
	}

	cats := []string{f.RandomString(categories)}
	if formType == "Birthday" {
		cats = []string{"Birthday"}
	} else if f.Bool() {
		if extra := f.RandomString(categories); extra != cats[0] {
			cats = append(cats, extra)
		}
	}

	title := f.Adjective() + " " + f.Noun()
	return sampleFlyer{
		ID:            fmt.Sprintf("sample-%03d", i+1),
		Title:         strings.ToUpper(title[:1]) + title[1:],
		Price:         f.RandomString(prices),
		HasPhotos:     hasPhotos,
		FormType:      formType,
		Image:         fmt.Sprintf("https://cdn.example.com/flyers/sample-%03d.jpg", i+1),
		Categories:    cats,
		RecentlyAdded: f.Number(0, 3) == 0,
		Featured:      f.Number(0, 5) == 0,
		CreatedAt:     f.DateRange(time.Now().AddDate(-1, 0, 0), time.Now()).UTC(),
	}
}

func writeFlyers(filePath string, flyers []sampleFlyer) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	enc := json.NewEncoder(gzipWriter)
	for _, flyer := range flyers {
		if err := enc.Encode(flyer); err != nil {
			return fmt.Errorf("failed to write flyer: %w", err)
		}
	}

	return nil
}
