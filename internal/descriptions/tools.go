package descriptions

// Tool descriptions with practical examples and use cases

const (
	// Screening Tools
	ScreenFileDescription = `Screen a single disclosure PDF for overseas direct investment (ODI) activity and extract the transaction record.

**When to use:** You have one announcement PDF and want the full verdict: is it an ODI transaction, why or why not, and what are the deal details.

**Why it's useful:** Runs the complete pipeline in one call - text extraction, exclusion filtering, overseas-marker detection, investment-action detection, target-country identification and structured field extraction.

**Examples:**
• Single filing review: "Screen 600519贵州茅台2024-01-15关于境外投资的公告.pdf"
• Quick triage: "Is quarterly-filing.pdf an overseas investment announcement?"

**Common workflows:**
1. Targeted Review: screen_file → read decision trace → verify extracted fields
2. Triage: pdf_search_directory → screen_file on candidates → screen_directory for the rest

**Best practices:** Check the decision trace when a verdict looks wrong; every rule the classifier fired is listed with its evidence.`

	ScreenDirectoryDescription = `Screen every disclosure PDF under a directory and summarize the ODI hits and exclusions.

**When to use:** You have a corpus of announcement PDFs and want a batch verdict without exporting a workbook.

**Why it's useful:** Gives a fast overview - which filings are ODI transactions, which target countries they involve, and why the rest were excluded - before committing to a full extraction run.

**Examples:**
• Corpus triage: "Screen all PDFs under /data/announcements/2024"
• Spot check: "How many of the filings in the default directory are overseas investments?"

**Common workflows:**
1. Batch Triage: screen_directory → screen_file on interesting hits
2. Corpus Hygiene: pdf_stats_file on outliers → screen_directory → review exclusions

**Best practices:** Leave directory empty to use the configured corpus directory; large corpora are better served by the batch CLI which writes a full workbook.`

	ClassifyTextDescription = `Classify already-extracted announcement text as ODI or not, with a full decision trace.

**When to use:** You already have the text (from pdf_read_file or elsewhere) and want just the classification verdict.

**Why it's useful:** Skips PDF parsing entirely, so it also works on text snippets, OCR output, or announcement bodies pasted from other systems.

**Examples:**
• Rule debugging: "Classify this paragraph and show which exclusion rule fired"
• OCR pipeline: "Classify the OCR text of scanned-filing.pdf"

**Common workflows:**
1. Rule Debugging: classify_text → inspect trace → adjust rules file → classify_text again
2. External Text: OCR or copy text → classify_text → extract_text if ODI

**Best practices:** Pass the original filename when you have it; filename metadata feeds the extraction step later.`

	ExtractTextDescription = `Extract the structured ODI transaction record from announcement text.

**When to use:** A document is already known (or assumed) to be an ODI transaction and you want the field-level record: target company, deal type, amount, equity ratio, approvals and the rest.

**Why it's useful:** Returns the same three-category record the workbook export uses - 基本信息, 交易结构, 合规审批 - so results line up with batch runs.

**Examples:**
• Field extraction: "Extract the transaction record from this announcement text, target country 越南"
• Partial documents: "Extract what you can from this excerpt"

**Common workflows:**
1. Two-step Screening: classify_text → extract_text with the reported target country
2. Record Repair: extract_text → compare against workbook row → fix rules file

**Best practices:** Provide target_country from a prior classify_text call; several field rules anchor their patterns on the country name.`

	// PDF Utility Tools
	PDFValidateFileDescription = `Verify a PDF is structurally sound and readable before screening it.

**When to use:** Before screening unfamiliar files, or when a screen_file call reports a parse failure and you want to know why.

**Why it's useful:** Distinguishes corrupt files from valid-but-scanned ones, and deep validation reports page count, PDF version and encryption.

**Examples:**
• Pre-flight check: "Validate downloaded-filing.pdf before screening"
• Failure diagnosis: "Deep-validate the file that failed parsing"

**Common workflows:**
1. Corpus Intake: validate each new file → quarantine failures → screen the rest
2. Failure Diagnosis: screen_file fails → pdf_validate_file with deep=true → inspect message

**Best practices:** Use deep validation only when diagnosing; the quick check is enough for intake.`

	PDFStatsFileDescription = `Get size, page count and document metadata for a PDF file.

**When to use:** Sizing up a file before screening, or pulling title/author/producer metadata for provenance checks.

**Examples:**
• Provenance: "Who produced this filing PDF and when was it created?"
• Sizing: "How many pages is annual-report.pdf?"

**Best practices:** Large page counts with tiny extracted text usually mean a scanned document.`

	PDFSearchDirectoryDescription = `List PDF files in a directory, optionally filtered by a fuzzy filename query.

**When to use:** Exploring a corpus directory, or locating a specific filing by partial name before screening it.

**Examples:**
• Locate a filing: "Find PDFs matching 贵州茅台 in the corpus directory"
• Corpus listing: "List all PDFs under /data/announcements"

**Best practices:** Leave directory empty to search the configured corpus directory; the query matches filename fragments in any order.`

	ScreeningServerInfoDescription = `Get server configuration, rule registry summary, corpus directory contents and tool guidance.

**When to use:** First call in a new session, or whenever you need to confirm which rules file and corpus directory the server is bound to.

**Why it's useful:** Shows the loaded rule counts (exclusion categories, countries, field rules) so you can verify a custom rules file actually took effect.

**Best practices:** Call this before debugging classification results; a stale rules file is the most common cause of surprising verdicts.`
)
