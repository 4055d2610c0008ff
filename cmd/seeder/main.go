package main

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/office-duty-card/internal/models"
)

var (
	firstNames   = []string{"Ayesha", "Bilal", "Fatima", "Hamza", "Sana", "Usman", "Zainab", "Imran"}
	lastNames    = []string{"Khan", "Ahmed", "Siddiqui", "Qureshi", "Malik", "Shah"}
	designations = []string{"Driver", "Lineman", "Supervisor", "Technician"}
	regions      = []string{"North", "South", "East", "West", "Central"}
	vehicleTypes = []string{"Pickup", "Crane", "Van", "Motorcycle"}
	shiftTypes   = []string{"Morning", "Evening", "Night"}
	categories   = []string{"LTV", "HTV", "PSV"}
)

// errDuplicate is returned when the server already holds a card with the
// same serial no, employee code or CNIC.
var errDuplicate = errors.New("card already exists")

// Client talks to the card API.
type Client struct {
	http *resty.Client
}

func NewClient(apiURL string) *Client {
	return &Client{http: resty.New().
		SetBaseURL(apiURL).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json")}
}

// Login signs in and keeps the token for later calls.
func (c *Client) Login(email, password string) error {
	var out models.LoginResponse
	resp, err := c.http.R().
		SetBody(models.LoginRequest{Email: email, Password: password}).
		SetResult(&out).
		Post("/auth/login")
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("login failed with status: %d", resp.StatusCode())
	}
	c.http.SetAuthToken(out.Token)
	return nil
}

// SetToken uses an existing session token instead of signing in.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

// CreateCard posts one card and returns its id.
func (c *Client) CreateCard(req models.CardRequest) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	resp, err := c.http.R().SetBody(req).SetResult(&out).Post("/cards")
	if err != nil {
		return "", fmt.Errorf("create card: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusCreated:
		return out.ID, nil
	case http.StatusUnprocessableEntity:
		return "", fmt.Errorf("%w: %s", errDuplicate, resp.String())
	default:
		return "", fmt.Errorf("card creation failed with status: %d", resp.StatusCode())
	}
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func digits(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + rng.Intn(10))
	}
	return string(b)
}

// photoDataURL draws a plain portrait-shaped placeholder photo.
func photoDataURL(rng *rand.Rand) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 72))
	bg := color.RGBA{R: uint8(80 + rng.Intn(150)), G: uint8(80 + rng.Intn(150)), B: uint8(80 + rng.Intn(150)), A: 255}
	for y := 0; y < 72; y++ {
		for x := 0; x < 60; x++ {
			img.Set(x, y, bg)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// randomCard builds the i-th sample card. Serial no and employee code are
// derived from i so reruns collide instead of piling up.
func randomCard(rng *rand.Rand, i int, now time.Time) (models.CardRequest, error) {
	photo, err := photoDataURL(rng)
	if err != nil {
		return models.CardRequest{}, err
	}
	issued := now.AddDate(0, -rng.Intn(6), 0)
	return models.CardRequest{
		Employee: models.EmployeeRecord{
			SerialNo:        fmt.Sprintf("SEED-%03d", i),
			EmployeeCode:    fmt.Sprintf("E-%04d", 1000+i),
			EmployeeName:    pick(rng, firstNames) + " " + pick(rng, lastNames),
			Designation:     pick(rng, designations),
			CNIC:            digits(rng, 13),
			LicenceNo:       "LIC-" + digits(rng, 6),
			LicenceCategory: pick(rng, categories),
			LicenceValidity: now.AddDate(2+rng.Intn(3), 0, 0).Format("2006-01"),
			DateOfIssue:     issued.Format("2006-01"),
			Photo:           photo,
		},
		Vehicle: models.VehicleRecord{
			VehicleNo:    fmt.Sprintf("KHI-%s", digits(rng, 4)),
			VehicleType:  pick(rng, vehicleTypes),
			ShiftType:    pick(rng, shiftTypes),
			Region:       pick(rng, regions),
			DepartureBC:  "BC-" + strconv.Itoa(1+rng.Intn(40)),
			InspectionID: "INS-" + digits(rng, 5),
			ValidFrom:    issued.Format("2006-01"),
		},
	}, nil
}

// seed creates count cards and reports how many were stored. Duplicates are
// skipped.
func seed(c *Client, rng *rand.Rand, count int, now time.Time) (int, error) {
	created := 0
	for i := 1; i <= count; i++ {
		req, err := randomCard(rng, i, now)
		if err != nil {
			return created, err
		}
		id, err := c.CreateCard(req)
		if errors.Is(err, errDuplicate) {
			log.WithField("serial_no", req.Employee.SerialNo).Warn("Card already exists, skipping")
			continue
		}
		if err != nil {
			return created, err
		}
		created++
		log.WithFields(log.Fields{"card_id": id, "serial_no": req.Employee.SerialNo}).Info("Created card")
	}
	return created, nil
}

func main() {
	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	count := 10
	if val := os.Getenv("SEED_COUNT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			count = n
		}
	}

	client := NewClient(apiURL)
	if token := os.Getenv("SEED_AUTH_TOKEN"); token != "" {
		client.SetToken(token)
	} else if err := client.Login(os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		log.WithError(err).Fatal("Failed to sign in. Set SEED_AUTH_TOKEN or ADMIN_EMAIL and ADMIN_PASSWORD")
	}

	log.WithFields(log.Fields{"count": count, "api_url": apiURL}).Info("Seeding duty cards")
	created, err := seed(client, rand.New(rand.NewSource(time.Now().UnixNano())), count, time.Now())
	if err != nil {
		log.WithError(err).WithField("created", created).Fatal("Seeding stopped")
	}
	log.WithField("created", created).Info("Seeding completed")
}
