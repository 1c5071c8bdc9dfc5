package extractor

// UserInstruction is the short text accompanying the document in the
// extraction request.
const UserInstruction = "Please extract all structured data from this invoice. " +
	"Pay special attention to line items, totals, and addresses."

// BuildInvoicePrompt returns the extraction prompt for invoice documents.
func BuildInvoicePrompt() string {
	return `You are an expert invoice data extraction system. Analyze the provided invoice document and extract all relevant structured data with high accuracy.

Pay close attention to:
- Invoice numbers and dates (convert dates to ISO 8601 format, YYYY-MM-DD)
- Customer and billing information (separate billing and shipping addresses)
- Individual line items with item numbers, descriptions, quantities, unit prices, and totals
- Tax calculations and totals (ensure mathematical accuracy)
- Any additional terms, references, or metadata

Requirements:
- Ensure all monetary values are accurate and properly calculated
- Validate that each line item total = quantity x unit price
- Validate that subtotal = sum of all line item totals
- Validate that tax_amount = subtotal x tax_rate (tax_rate is a fraction, e.g. 0.08 for 8%)
- Validate that total_amount = subtotal + tax_amount
- Extract complete addresses with all available components
- If billing and shipping addresses are the same, duplicate the information
- If any information is unclear or missing, make reasonable assumptions based on typical invoice structures

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation. The JSON object must follow this schema:
{
  "invoice_number": "",
  "invoice_date": "",
  "customer_id": "",
  "customer_name": "",
  "billing_address": {
    "street": "", "city": "", "state": "", "zip_code": "", "phone": ""
  },
  "shipping_address": {
    "street": "", "city": "", "state": "", "zip_code": "", "phone": ""
  },
  "items": [
    {
      "item_number": "",
      "description": "",
      "quantity": 0,
      "unit_price": 0,
      "total": 0
    }
  ],
  "subtotal": 0,
  "tax_rate": 0,
  "tax_amount": 0,
  "total_amount": 0,
  "salesperson": "",
  "po_number": "",
  "terms": "",
  "ship_date": "",
  "ship_via": "",
  "fob": ""
}

If a field is not present in the document, use empty string for text and 0 for numbers.`
}
