package router

// HelpMessage is the static answer for the help group.
const HelpMessage = `## Building 413 - Smart Environmental Monitoring

**Available sensors**
- CO2 levels (air quality)
- Temperature
- Humidity
- Light levels
- PIR motion detection

**Try asking**
- "Get energy statistics for the building"
- "Show sustainability metrics"
- "Calculate the carbon footprint"
- "What are the CO2 levels?"`

// FallbackMessage answers queries no rule matched.
const FallbackMessage = `I couldn't understand your request. Please try again with one of these topics:
- Energy statistics
- Sustainability metrics
- Carbon footprint`
