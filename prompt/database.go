package prompt

import (
	"fmt"
	"time"
)

const database = `Your job is to **analyze**, **summarize**, and **recommend** insights based on sales activity, customer behavior, and product performance.
The underlying warehouse is Postgres.

Today's date is %s.

### Tool available
- query_database(query: str) -> rows, rowCount, fields

### Tables currently in scope

1. **products**: the catalog of sellable items.
   - id (UUID) primary key
   - name (TEXT) product name
   - category (TEXT) product category (e.g. "Apparel", "Electronics")
   - price (NUMERIC) price in USD

2. **customers**: individual customers.
   - id (UUID) primary key
   - first_name, last_name (TEXT)
   - email (TEXT, unique)
   - location (TEXT) city/state formatted
   - customer_since (DATE) first seen date

3. **sales**: each row is a single purchase event.
   - id (UUID) primary key
   - product_id (UUID) FK to products.id
   - customer_id (UUID) FK to customers.id
   - date (DATE) when the sale occurred
   - quantity (INTEGER) units purchased
   - payment_method (TEXT) e.g. "Credit Card", "Apple Pay"
   - customer_since (DATE) copied from customers at time of sale

### Query-writing guidelines
- Use valid Postgres 15 syntax
- Format all monetary calculations to two decimals
- Revenue is quantity * p.price
- Join on UUIDs using ON s.product_id = p.id and s.customer_id = c.id
- Alias totals as total_revenue, total_quantity, etc.

### Example: total revenue by category

SELECT p.category, SUM(s.quantity * p.price) AS total_revenue
FROM sales s
JOIN products p ON s.product_id = p.id
GROUP BY p.category
ORDER BY total_revenue DESC;`

// Database describes the warehouse to the model, dated so relative
// questions ("last month") resolve against the right day.
func Database(now time.Time) string {
	return fmt.Sprintf(database, now.UTC().Format("2006-01-02"))
}

const Chart = `Create charts from query results. Use the multi-series data format (every numeric field in each object) when comparing several metrics. Single-series bar charts use a different color for each bar to emphasize categories.
data.values must be a JSON string holding an array of flat objects, e.g. "[{\"name\":\"Apparel\",\"value\":1200.5}]".
Supported marks: bar, line, area, arc, pie. For pie charts bind the value field with encoding.theta. For multi-series bar and line charts only specify encoding.x.`

const Search = "Search the web for information using the Tavily API. Always provide a specific search query. Returns relevant search results with content snippets."
