package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/IDINaXI/Nutrio/internal/reminders"
	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/IDINaXI/Nutrio/internal/validation"
	"github.com/jung-kurt/gofpdf"
)

// DataSource is everything a report is built from.
type DataSource interface {
	storage.UsersStorage
	storage.WeightsStorage
	storage.MeasurementsStorage
	storage.RemindersStorage
}

// Generator generates PDF/CSV reports
type Generator struct {
	source   DataSource
	fontPath string
	now      func() time.Time
}

func NewGenerator(source DataSource, fontPath string) *Generator {
	return &Generator{
		source:   source,
		fontPath: fontPath,
		now:      time.Now,
	}
}

type reportData struct {
	User         *storage.User
	From, To     string
	Weights      []storage.WeightEntry
	Measurements []storage.Measurement
	Medications  []storage.Reminder
	GeneratedAt  time.Time
}

// Generate collects the user's data for the period and renders the report.
func (g *Generator) Generate(ctx context.Context, userID int64, from, to, format string) ([]byte, error) {
	data, err := g.collect(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatPDF:
		return g.renderPDF(data)
	case FormatCSV:
		return renderCSV(data)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func (g *Generator) collect(ctx context.Context, userID int64, from, to string) (*reportData, error) {
	user, err := g.source.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	weights, err := g.source.ListWeights(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weights: %w", err)
	}

	measurements, err := g.source.ListMeasurements(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch measurements: %w", err)
	}

	all, err := g.source.ListReminders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminders: %w", err)
	}
	medications := make([]storage.Reminder, 0, len(all))
	for _, r := range all {
		if r.Active {
			medications = append(medications, r)
		}
	}

	return &reportData{
		User:         user,
		From:         from,
		To:           to,
		Weights:      weights,
		Measurements: measurements,
		Medications:  medications,
		GeneratedAt:  g.now().UTC(),
	}, nil
}

// csvRow: одна дата; последняя запись за день перекрывает предыдущие.
type csvRow struct {
	weight *float64
	m      *storage.Measurement
}

func renderCSV(data *reportData) ([]byte, error) {
	rows := map[string]*csvRow{}
	row := func(date string) *csvRow {
		r, ok := rows[date]
		if !ok {
			r = &csvRow{}
			rows[date] = r
		}
		return r
	}
	for _, w := range data.Weights {
		v := w.WeightKg
		row(w.Date).weight = &v
	}
	for i := range data.Measurements {
		row(data.Measurements[i].Date).m = &data.Measurements[i]
	}

	dates := make([]string, 0, len(rows))
	for d := range rows {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"date", "weight_kg", "waist_cm", "chest_cm", "hips_cm", "arm_cm", "leg_cm"}); err != nil {
		return nil, err
	}

	for _, date := range dates {
		r := rows[date]
		record := []string{date, formatOptional(r.weight)}
		if r.m != nil {
			record = append(record,
				formatOptional(r.m.WaistCm),
				formatOptional(r.m.ChestCm),
				formatOptional(r.m.HipsCm),
				formatOptional(r.m.ArmCm),
				formatOptional(r.m.LegCm),
			)
		} else {
			record = append(record, "", "", "", "", "")
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// pdfDoc: документ вместе с функцией подготовки текста под выбранный шрифт.
type pdfDoc struct {
	*gofpdf.Fpdf
	font string
	tr   func(string) string
}

const utf8FontName = "DejaVuSans"

// newPDF подключает TTF с кириллицей; без него текст транслитерируется для Helvetica.
func (g *Generator) newPDF() *pdfDoc {
	if pdf, ok := loadUTF8Font(g.fontPath); ok {
		return &pdfDoc{Fpdf: pdf, font: utf8FontName, tr: func(s string) string { return s }}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	cp1252 := pdf.UnicodeTranslatorFromDescriptor("")
	return &pdfDoc{
		Fpdf: pdf,
		font: "Helvetica",
		tr:   func(s string) string { return cp1252(transliterate(s)) },
	}
}

// loadUTF8Font: битый TTF gofpdf иногда не отмечает ошибкой, а падает при разборе.
func loadUTF8Font(path string) (pdf *gofpdf.Fpdf, ok bool) {
	if path == "" {
		return nil, false
	}
	font, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	defer func() {
		if recover() != nil {
			pdf, ok = nil, false
		}
	}()

	pdf = gofpdf.New("P", "mm", "A4", "")
	pdf.AddUTF8FontFromBytes(utf8FontName, "", font)
	pdf.SetFont(utf8FontName, "", 10)
	if pdf.Err() {
		return nil, false
	}
	return pdf, true
}

func (d *pdfDoc) text(w, h float64, s string, border string, ln int, align string) {
	d.CellFormat(w, h, d.tr(s), border, ln, align, false, 0, "")
}

func (d *pdfDoc) section(title string) {
	d.Ln(4)
	d.SetFont(d.font, "", 13)
	d.text(0, 8, title, "", 1, "L")
	d.SetFont(d.font, "", 9)
}

func (d *pdfDoc) header(widths []float64, titles ...string) {
	d.SetFillColor(230, 240, 235)
	for i, t := range titles {
		ln := 0
		if i == len(titles)-1 {
			ln = 1
		}
		d.CellFormat(widths[i], 6, d.tr(t), "1", ln, "C", true, 0, "")
	}
}

func (d *pdfDoc) row(widths []float64, cells ...string) {
	for i, c := range cells {
		ln := 0
		if i == len(cells)-1 {
			ln = 1
		}
		d.text(widths[i], 6, c, "1", ln, "C")
	}
}

func (g *Generator) renderPDF(data *reportData) ([]byte, error) {
	d := g.newPDF()
	d.SetCreationDate(data.GeneratedAt)
	d.SetTitle("NUTRIO", true)
	d.SetFooterFunc(func() {
		d.SetY(-15)
		d.SetFont(d.font, "", 8)
		d.SetTextColor(120, 120, 120)
		d.text(0, 10, fmt.Sprintf("Сформировано: %s UTC  |  стр. %d", data.GeneratedAt.Format("2006-01-02 15:04"), d.PageNo()), "", 0, "C")
		d.SetTextColor(0, 0, 0)
	})
	d.AddPage()

	d.SetFont(d.font, "", 22)
	d.SetTextColor(46, 125, 50)
	d.text(0, 12, "NUTRIO", "", 1, "L")
	d.SetTextColor(0, 0, 0)
	d.SetFont(d.font, "", 16)
	d.text(0, 9, "Медицинский отчёт", "", 1, "L")
	d.SetFont(d.font, "", 11)
	d.text(0, 7, fmt.Sprintf("Период: %s - %s", data.From, data.To), "", 1, "L")

	d.section("Пациент")
	userInfoTable(d, data.User)

	d.section("Динамика веса")
	weightChart(d, data)

	d.section("Вес")
	if len(data.Weights) == 0 {
		d.text(0, 6, "Нет данных за период", "", 1, "L")
	} else {
		widths := []float64{50, 40}
		d.header(widths, "Дата", "Вес, кг")
		for _, w := range data.Weights {
			d.row(widths, w.Date, fmt.Sprintf("%.1f", w.WeightKg))
		}
	}

	d.section("Замеры тела, см")
	if len(data.Measurements) == 0 {
		d.text(0, 6, "Нет данных за период", "", 1, "L")
	} else {
		widths := []float64{35, 28, 28, 28, 28, 28}
		d.header(widths, "Дата", "Талия", "Грудь", "Бёдра", "Рука", "Нога")
		for _, m := range data.Measurements {
			d.row(widths, m.Date, formatOptional(m.WaistCm), formatOptional(m.ChestCm),
				formatOptional(m.HipsCm), formatOptional(m.ArmCm), formatOptional(m.LegCm))
		}
	}

	d.section("Принимаемые препараты")
	if len(data.Medications) == 0 {
		d.text(0, 6, "Нет активных напоминаний", "", 1, "L")
	} else {
		widths := []float64{50, 35, 20, 35, 50}
		d.header(widths, "Препарат", "Дозировка", "Время", "Дни", "Комментарий")
		for _, r := range data.Medications {
			d.row(widths, truncate(r.Name, 30), truncate(r.Dosage, 20), validation.FormatHHMM(r.TimeMinutes),
				formatDays(r.DaysMask), truncate(r.Comment, 30))
		}
	}

	var buf bytes.Buffer
	if err := d.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	genderNames   = map[string]string{"MALE": "мужской", "FEMALE": "женский"}
	goalNames     = map[string]string{"LOSE_WEIGHT": "снижение веса", "MAINTAIN_WEIGHT": "поддержание веса", "GAIN_WEIGHT": "набор массы"}
	activityNames = map[string]string{
		"SEDENTARY":         "сидячий",
		"LIGHTLY_ACTIVE":    "лёгкая",
		"MODERATELY_ACTIVE": "умеренная",
		"VERY_ACTIVE":       "высокая",
		"EXTREMELY_ACTIVE":  "очень высокая",
	}
	weekdayShort = []string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}
)

func userInfoTable(d *pdfDoc, u *storage.User) {
	dash := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "-"
		}
		return s
	}
	str := func(p *string, names map[string]string) string {
		if p == nil {
			return "-"
		}
		if n, ok := names[*p]; ok {
			return n
		}
		return *p
	}
	num := func(p *float64, unit string) string {
		if p == nil {
			return "-"
		}
		return fmt.Sprintf("%.1f %s", *p, unit)
	}
	age := "-"
	if u.Age != nil {
		age = strconv.Itoa(*u.Age)
	}

	rows := [][2]string{
		{"Имя", dash(u.Name)},
		{"Email", u.Email},
		{"Возраст", age},
		{"Пол", str(u.Gender, genderNames)},
		{"Рост", num(u.HeightCm, "см")},
		{"Вес", num(u.WeightKg, "кг")},
		{"Цель", str(u.Goal, goalNames)},
		{"Активность", dash(activityNames[u.ActivityLevel])},
		{"Аллергии", dash(strings.Join(u.Allergies, ", "))},
	}
	for _, r := range rows {
		d.text(40, 6, r[0], "1", 0, "L")
		d.text(140, 6, r[1], "1", 1, "L")
	}
}

// weightChart рисует линию веса; ось X: дни периода, ось Y: min..max с отступом.
func weightChart(d *pdfDoc, data *reportData) {
	if len(data.Weights) < 2 {
		d.text(0, 6, "Недостаточно данных для графика", "", 1, "L")
		return
	}

	const chartW, chartH = 170.0, 60.0
	if d.GetY()+chartH+10 > 270 {
		d.AddPage()
	}
	from, to, ok := chartRange(data)
	if !ok {
		d.text(0, 6, "Недостаточно данных для графика", "", 1, "L")
		return
	}
	x0, y0 := 25.0, d.GetY()+2

	span := to.Sub(from).Hours() / 24
	if span <= 0 {
		span = 1
	}

	lo, hi := data.Weights[0].WeightKg, data.Weights[0].WeightKg
	for _, w := range data.Weights {
		lo = min(lo, w.WeightKg)
		hi = max(hi, w.WeightKg)
	}
	lo, hi = lo-1, hi+1

	d.SetDrawColor(180, 180, 180)
	d.SetLineWidth(0.2)
	d.Rect(x0, y0, chartW, chartH, "D")

	d.SetFont(d.font, "", 7)
	for i := 0; i <= 4; i++ {
		v := lo + (hi-lo)*float64(i)/4
		y := y0 + chartH - chartH*float64(i)/4
		d.Line(x0, y, x0+chartW, y)
		d.SetXY(x0-15, y-2)
		d.text(13, 4, fmt.Sprintf("%.1f", v), "", 0, "R")
	}
	d.SetXY(x0, y0+chartH+1)
	d.text(chartW/2, 4, data.From, "", 0, "L")
	d.text(chartW/2, 4, data.To, "", 0, "R")

	d.SetDrawColor(46, 125, 50)
	d.SetFillColor(46, 125, 50)
	d.SetLineWidth(0.6)
	var px, py float64
	for i, w := range data.Weights {
		t, err := validation.ParseDate(w.Date)
		if err != nil {
			continue
		}
		x := x0 + chartW*(t.Sub(from).Hours()/24)/span
		y := y0 + chartH - chartH*(w.WeightKg-lo)/(hi-lo)
		if i > 0 {
			d.Line(px, py, x, y)
		}
		d.Circle(x, y, 0.8, "F")
		px, py = x, y
	}

	d.SetDrawColor(0, 0, 0)
	d.SetLineWidth(0.2)
	d.SetXY(10, y0+chartH+6)
	d.SetFont(d.font, "", 9)
}

// chartRange выбирает ось X: запрошенный период, иначе даты первой и
// последней разбираемой записи. ok=false, если ни то ни другое не подходит.
func chartRange(data *reportData) (from, to time.Time, ok bool) {
	from, errFrom := validation.ParseDate(data.From)
	to, errTo := validation.ParseDate(data.To)
	if errFrom == nil && errTo == nil && to.After(from) {
		return from, to, true
	}

	var dates []time.Time
	for _, w := range data.Weights {
		if t, err := validation.ParseDate(w.Date); err == nil {
			dates = append(dates, t)
		}
	}
	if len(dates) < 2 {
		return time.Time{}, time.Time{}, false
	}
	return dates[0], dates[len(dates)-1], true
}

func formatDays(mask int) string {
	days := reminders.MaskToDays(mask)
	if len(days) == 7 {
		return "ежедневно"
	}
	names := make([]string, 0, len(days))
	for _, day := range days {
		names = append(names, weekdayShort[day-1])
	}
	return strings.Join(names, ",")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
