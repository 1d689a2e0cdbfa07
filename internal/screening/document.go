package screening

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	stockCodePattern   = regexp.MustCompile(`^(\d{6})`)
	isoDatePattern     = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
	chineseDatePattern = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
)

// NewDocument builds a document from extracted text and the source filename,
// parsing the filename metadata eagerly.
func NewDocument(text, fileName string) Document {
	return Document{
		Text:     text,
		FileName: fileName,
		Meta:     ParseFileName(fileName),
	}
}

// ParseFileName pulls stock code, company name and announcement date out of
// a disclosure filename such as
//
//	600519贵州茅台2024-01-15关于境外投资的公告.pdf
//
// Both 2024-01-15 and 2024年1月15日 date forms are accepted; the result is
// always normalized to YYYY-MM-DD. Parts that cannot be identified stay
// empty, parsing never fails.
func ParseFileName(fileName string) FileMeta {
	var meta FileMeta

	name := filepath.Base(fileName)
	if ext := filepath.Ext(name); strings.EqualFold(ext, ".pdf") || strings.EqualFold(ext, ".txt") {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "" {
		return meta
	}

	rest := name
	if m := stockCodePattern.FindStringSubmatch(rest); m != nil {
		meta.StockCode = m[1]
		rest = rest[len(m[1]):]
	}

	dateStart := len(rest)
	if loc := isoDatePattern.FindStringSubmatchIndex(rest); loc != nil {
		meta.AnnounceDate = normalizeDate(isoDatePattern.FindStringSubmatch(rest))
		dateStart = loc[0]
	} else if loc := chineseDatePattern.FindStringSubmatchIndex(rest); loc != nil {
		meta.AnnounceDate = normalizeDate(chineseDatePattern.FindStringSubmatch(rest))
		dateStart = loc[0]
	}

	meta.CompanyName = cleanCompanySegment(rest[:dateStart])
	return meta
}

// normalizeDate renders the year/month/day capture groups as YYYY-MM-DD.
func normalizeDate(groups []string) string {
	year, _ := strconv.Atoi(groups[1])
	month, _ := strconv.Atoi(groups[2])
	day, _ := strconv.Atoi(groups[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// cleanCompanySegment trims separators and title boilerplate from the
// filename segment between the stock code and the date.
func cleanCompanySegment(segment string) string {
	segment = strings.Trim(segment, "-_ ．.·")
	for _, marker := range []string{"关于", "：", ":"} {
		if idx := strings.Index(segment, marker); idx >= 0 {
			segment = segment[:idx]
		}
	}
	return strings.TrimSpace(segment)
}
